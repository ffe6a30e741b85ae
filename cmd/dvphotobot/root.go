package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/dvphoto-bot/pkg/adapters"
	"github.com/shouni/dvphoto-bot/pkg/config"
	"github.com/shouni/dvphoto-bot/pkg/domain"
	"github.com/shouni/dvphoto-bot/pkg/generator"
	"github.com/shouni/dvphoto-bot/pkg/pipeline"
	"github.com/shouni/dvphoto-bot/pkg/prompt"
)

var logLevel slog.LevelVar

var (
	_ pipeline.Generator = (*generator.GeminiGateway)(nil)
	_ pipeline.Fetcher   = adapters.StorageFetcher{}
	_ pipeline.Deliverer = adapters.StorageDeliverer{}
)

func setupLogger(w io.Writer) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &logLevel})))
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "dvphotobot",
		Short: "DV lottery photo corrector bot",
		Long: `dvphotobot receives a portrait photo over Telegram, asks Gemini to correct it
against a reference sample, and returns a 600x600 PNG suitable for the DV lottery.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default: config.env, then .env)")

	root.AddCommand(
		newServeCmd(&envFile),
		newProcessCmd(&envFile),
		newCheckCmd(&envFile),
		newVersionCmd(),
	)
	return root
}

// app は起動時に一度だけ読み込む設定・カタログ・見本画像です。
type app struct {
	cfg     *config.Config
	catalog *prompt.Catalog
	sample  domain.ReferenceSample
	storage *storageIO
}

// loadApp は設定を検証して見本画像を読み込みます。uris は見本画像と合わせて使うストレージの URI です。
func loadApp(ctx context.Context, envFile string, requireToken bool, uris ...string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logLevel.Set(cfg.LogLevel)

	if err := cfg.Validate(requireToken); err != nil {
		return nil, err
	}
	catalog, err := prompt.Load(cfg.PromptCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	if cfg.ReferenceSampleBase64 == "" {
		uris = append(uris, cfg.ReferenceSamplePath)
	}
	storage, err := openStorage(ctx, uris...)
	if err != nil {
		return nil, err
	}
	sample, err := config.LoadReferenceSample(ctx, cfg, storage.reader)
	if err != nil {
		storage.Close()
		return nil, err
	}
	slog.InfoContext(ctx, "設定を読み込みました",
		"model", cfg.GeminiModel, "sample", sample.Origin, "catalog_version", catalog.Version)
	return &app{cfg: cfg, catalog: catalog, sample: sample, storage: storage}, nil
}

// Close はストレージのクライアントを解放します。
func (a *app) Close() {
	if err := a.storage.Close(); err != nil {
		slog.Warn("ストレージクライアントの解放に失敗しました", "error", err)
	}
}

// newGenerator はゲートウェイを組み立てます。テストで差し替えます。
var newGenerator = func(ctx context.Context, a *app) (pipeline.Generator, string, error) {
	client, err := generator.NewGenAIClient(ctx, a.cfg.GeminiAPIKey)
	if err != nil {
		return nil, "", err
	}
	gw, err := generator.NewGeminiGateway(client.Models, generator.Options{
		Model:       a.cfg.GeminiModel,
		Instruction: a.catalog.Instruction,
		Timeout:     a.cfg.GatewayTimeout,
		Retry:       a.cfg.RetryPolicy(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	return gw, gw.Model(), nil
}

func (a *app) newPipeline(gen pipeline.Generator) (*pipeline.Pipeline, error) {
	return pipeline.New(pipeline.Config{
		Sample:         a.sample,
		Generator:      gen,
		TempDir:        a.cfg.TempDir,
		Messages:       a.catalog.Messages,
		OutputFileName: a.catalog.Output.FileName,
		Caption:        a.catalog.Output.Caption,
	})
}
