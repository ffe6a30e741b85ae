// Package adapters はメッセージング基盤（Telegram）とパイプラインをつなぎます。
package adapters

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shouni/dvphoto-bot/pkg/domain"
	"github.com/shouni/dvphoto-bot/pkg/prompt"
)

// BotAPI は *tgbotapi.BotAPI のうち、このパッケージが使う操作だけを抜き出したものです。
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// chatDeliverer は処理結果をドキュメントとしてチャットへ送ります。
type chatDeliverer struct {
	api     BotAPI
	chatID  int64
	replyTo int
}

func (d *chatDeliverer) Deliver(ctx context.Context, result *domain.ProcessedResult) error {
	doc := tgbotapi.NewDocument(d.chatID, tgbotapi.FileBytes{Name: result.FileName, Bytes: result.Data})
	doc.Caption = result.Caption
	doc.ReplyToMessageID = d.replyTo
	if _, err := d.api.Send(doc); err != nil {
		return fmt.Errorf("%w: 画像の送信に失敗しました: %w", domain.ErrTransport, err)
	}
	return nil
}

// RegisterCommands はコマンドメニューを登録します。
func RegisterCommands(api BotAPI, commands []prompt.Command) error {
	if len(commands) == 0 {
		return nil
	}
	botCommands := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, c := range commands {
		botCommands = append(botCommands, tgbotapi.BotCommand{Command: c.Command, Description: c.Description})
	}
	if _, err := api.Request(tgbotapi.NewSetMyCommands(botCommands...)); err != nil {
		return fmt.Errorf("コマンドメニューの登録に失敗しました: %w", err)
	}
	return nil
}
