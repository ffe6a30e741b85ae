package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/spf13/cobra"

	"github.com/shouni/dvphoto-bot/pkg/adapters"
	"github.com/shouni/dvphoto-bot/pkg/domain"
)

const pollTimeoutSeconds = 60

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot (long polling)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, *envFile, true)
			if err != nil {
				return err
			}
			defer a.Close()
			gen, model, err := newGenerator(ctx, a)
			if err != nil {
				return err
			}
			p, err := a.newPipeline(gen)
			if err != nil {
				return err
			}

			api, err := tgbotapi.NewBotAPI(a.cfg.TelegramToken)
			if err != nil {
				return fmt.Errorf("%w: Telegram への接続に失敗しました: %w", domain.ErrConfiguration, err)
			}
			fetcher, err := adapters.NewTelegramFetcher(api, httpkit.New(a.cfg.DownloadTimeout), a.cfg.TelegramFileHost)
			if err != nil {
				return err
			}
			bot, err := adapters.NewBot(adapters.BotConfig{
				API:           api,
				Processor:     p,
				Fetcher:       fetcher,
				Catalog:       a.catalog,
				Sample:        a.sample,
				Model:         model,
				MaxConcurrent: int64(a.cfg.MaxConcurrentRequests),
			})
			if err != nil {
				return err
			}
			if err := adapters.RegisterCommands(api, a.catalog.Commands); err != nil {
				slog.WarnContext(ctx, "コマンドメニューを登録できませんでした", "error", err)
			}

			u := tgbotapi.NewUpdate(0)
			u.Timeout = pollTimeoutSeconds
			updates := api.GetUpdatesChan(u)
			go func() {
				<-ctx.Done()
				api.StopReceivingUpdates()
			}()

			slog.InfoContext(ctx, "ボットを起動しました",
				"username", api.Self.UserName, "model", model, "max_concurrent", a.cfg.MaxConcurrentRequests)
			return bot.Run(ctx, updates)
		},
	}
}
