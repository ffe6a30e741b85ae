package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/shouni/dvphoto-bot/pkg/domain"
	"github.com/shouni/dvphoto-bot/pkg/imgutil"
	"github.com/shouni/dvphoto-bot/pkg/pipeline"
	"github.com/shouni/dvphoto-bot/pkg/prompt"
)

// Processor は写真1件を処理するパイプラインです。*pipeline.Pipeline が満たします。
type Processor interface {
	Process(ctx context.Context, req domain.PhotoRequest, fetcher pipeline.Fetcher, deliverer pipeline.Deliverer) domain.Outcome
}

// BotConfig は Bot の依存関係です。
type BotConfig struct {
	API           BotAPI
	Processor     Processor
	Fetcher       pipeline.Fetcher
	Catalog       *prompt.Catalog
	Sample        domain.ReferenceSample
	Model         string
	MaxConcurrent int64
}

// Bot は Telegram の更新を受け取り、コマンド応答と写真処理を振り分けます。
type Bot struct {
	api       BotAPI
	processor Processor
	fetcher   pipeline.Fetcher
	catalog   *prompt.Catalog
	sample    domain.ReferenceSample
	model     string
	sem       *semaphore.Weighted
	wg        sync.WaitGroup
}

// NewBot は依存関係を注入して Bot を初期化します。
func NewBot(cfg BotConfig) (*Bot, error) {
	if cfg.API == nil {
		return nil, fmt.Errorf("api (BotAPI) is required")
	}
	if cfg.Processor == nil {
		return nil, fmt.Errorf("processor is required")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	return &Bot{
		api:       cfg.API,
		processor: cfg.Processor,
		fetcher:   cfg.Fetcher,
		catalog:   cfg.Catalog,
		sample:    cfg.Sample,
		model:     cfg.Model,
		sem:       semaphore.NewWeighted(cfg.MaxConcurrent),
	}, nil
}

// Run は updates が閉じるか ctx がキャンセルされるまで更新を処理します。
// 同時に処理する更新は MaxConcurrent 件までで、戻る前に処理中のものをすべて待ちます。
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "更新の受信を終了します")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.sem.Acquire(ctx, 1); err != nil {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				defer b.sem.Release(1)
				defer func() {
					if r := recover(); r != nil {
						slog.ErrorContext(ctx, "更新の処理中にパニックが発生しました", "update_id", update.UpdateID, "panic", r)
					}
				}()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate は1件の更新を処理します。
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		photo := largestPhoto(msg.Photo)
		b.handlePhoto(ctx, msg, domain.PhotoRequest{
			Source:       domain.FileHandle(photo.FileID),
			DeclaredMIME: "image/jpeg",
		})
	case msg.Document != nil:
		if !imgutil.IsImageMIME(msg.Document.MimeType) {
			b.reply(ctx, msg, b.catalog.Messages.NotAnImage)
			return
		}
		b.handlePhoto(ctx, msg, domain.PhotoRequest{
			Source:       domain.FileHandle(msg.Document.FileID),
			DeclaredMIME: msg.Document.MimeType,
			FileName:     msg.Document.FileName,
		})
	case msg.Text != "":
		b.reply(ctx, msg, b.catalog.Messages.TextHint)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	m := b.catalog.Messages
	switch msg.Command() {
	case "start":
		b.reply(ctx, msg, m.Start)
	case "help":
		b.reply(ctx, msg, m.Help)
	case "requirements":
		b.reply(ctx, msg, m.Requirements)
	case "status":
		b.reply(ctx, msg, fmt.Sprintf(m.Status, b.model, b.sampleStatus()))
	case "sample":
		b.sendSample(ctx, msg)
	default:
		b.reply(ctx, msg, m.Help)
	}
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, req domain.PhotoRequest) {
	req.ID = uuid.NewString()
	chatID := msg.Chat.ID
	slog.InfoContext(ctx, "写真の処理を開始します", "request_id", req.ID, "chat_id", chatID)

	progress, err := b.api.Send(tgbotapi.NewMessage(chatID, b.catalog.Messages.Processing))
	if err != nil {
		slog.WarnContext(ctx, "進捗メッセージの送信に失敗しました", "request_id", req.ID, "error", err)
	}

	deliverer := &chatDeliverer{api: b.api, chatID: chatID, replyTo: msg.MessageID}
	outcome := b.processor.Process(ctx, req, b.fetcher, deliverer)

	if outcome.Message == "" {
		return
	}
	if err == nil && progress.MessageID != 0 {
		_, editErr := b.api.Send(tgbotapi.NewEditMessageText(chatID, progress.MessageID, outcome.Message))
		if editErr == nil {
			return
		}
		slog.WarnContext(ctx, "進捗メッセージの更新に失敗しました", "request_id", req.ID, "error", editErr)
	}
	b.reply(ctx, msg, outcome.Message)
}

func (b *Bot) sendSample(ctx context.Context, msg *tgbotapi.Message) {
	if len(b.sample.Data) == 0 {
		b.reply(ctx, msg, b.catalog.Messages.SampleMissing)
		return
	}
	name := "sample" + imgutil.ExtensionFor(b.sample.MIMEType)
	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: name, Bytes: b.sample.Data})
	photo.Caption = b.catalog.Messages.SampleCaption
	if _, err := b.api.Send(photo); err != nil {
		slog.WarnContext(ctx, "見本画像の送信に失敗しました", "chat_id", msg.Chat.ID, "error", err)
		b.reply(ctx, msg, b.catalog.Messages.SampleMissing)
	}
}

func (b *Bot) sampleStatus() string {
	if len(b.sample.Data) == 0 {
		return "Missing"
	}
	return "Available"
}

func (b *Bot) reply(ctx context.Context, msg *tgbotapi.Message, text string) {
	if text == "" {
		return
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, text)); err != nil {
		slog.WarnContext(ctx, "メッセージの送信に失敗しました", "chat_id", msg.Chat.ID, "error", err)
	}
}

// largestPhoto は解像度が最大のサイズを返します。
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}
