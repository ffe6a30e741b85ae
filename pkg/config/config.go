// Package config は環境変数（と任意の .env ファイル）から起動設定を一度だけ読み込みます。
// 読み込んだ Config は各コンポーネントのコンストラクタへ値として渡し、以後は環境変数を参照しません。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/dvphoto-bot/pkg/domain"
	"github.com/shouni/dvphoto-bot/pkg/generator"
)

const (
	DefaultSamplePath       = "./sample/image.png"
	DefaultGatewayTimeout   = generator.DefaultTimeout
	DefaultRetryBackoff     = 2 * time.Second
	DefaultDownloadTimeout  = 30 * time.Second
	DefaultMaxConcurrent    = 8
	DefaultTelegramFileHost = "api.telegram.org"
)

// DefaultEnvFiles は envFile 未指定時に探すファイルです。
var DefaultEnvFiles = []string{"config.env", ".env"}

// Config は起動時に確定する設定値です。
type Config struct {
	TelegramToken string
	GeminiAPIKey  string
	GeminiModel   string

	ReferenceSamplePath   string
	ReferenceSampleBase64 string
	PromptCatalogPath     string

	GatewayTimeout      time.Duration
	GatewayMaxAttempts  int
	GatewayRetryBackoff time.Duration

	DownloadTimeout       time.Duration
	TelegramFileHost      string
	TempDir               string
	MaxConcurrentRequests int

	LogLevel slog.Level
}

// Load は .env ファイルを読み込んだうえで環境変数から Config を組み立てます。
// 既に設定済みの環境変数は .env で上書きしません。
func Load(envFile string) (*Config, error) {
	if err := loadEnvFiles(envFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		TelegramToken:         getEnv("TELEGRAM_BOT_TOKEN", ""),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", generator.DefaultModel),
		ReferenceSamplePath:   getEnv("REFERENCE_SAMPLE_PATH", DefaultSamplePath),
		ReferenceSampleBase64: getEnv("REFERENCE_SAMPLE_BASE64", ""),
		PromptCatalogPath:     getEnv("PROMPT_CATALOG_PATH", ""),
		TelegramFileHost:      getEnv("TELEGRAM_FILE_HOST", DefaultTelegramFileHost),
		TempDir:               getEnv("TEMP_DIR", os.TempDir()),
	}

	var errs []error
	cfg.GatewayTimeout = getDuration("GATEWAY_TIMEOUT", DefaultGatewayTimeout, &errs)
	cfg.GatewayMaxAttempts = getInt("GATEWAY_MAX_ATTEMPTS", 1, &errs)
	cfg.GatewayRetryBackoff = getDuration("GATEWAY_RETRY_BACKOFF", DefaultRetryBackoff, &errs)
	cfg.DownloadTimeout = getDuration("DOWNLOAD_TIMEOUT", DefaultDownloadTimeout, &errs)
	cfg.MaxConcurrentRequests = getInt("MAX_CONCURRENT_REQUESTS", DefaultMaxConcurrent, &errs)
	cfg.LogLevel = getLevel("LOG_LEVEL", slog.LevelInfo, &errs)

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, errors.Join(errs...))
	}
	return cfg, nil
}

// Validate は必須項目を検証します。requireToken が false の場合は TELEGRAM_BOT_TOKEN を要求しません（ローカル処理用）。
func (c *Config) Validate(requireToken bool) error {
	var errs []error
	if requireToken && c.TelegramToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN not found in environment variables"))
	}
	if c.GeminiAPIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	if c.ReferenceSamplePath == "" && c.ReferenceSampleBase64 == "" {
		errs = append(errs, errors.New("REFERENCE_SAMPLE_PATH or REFERENCE_SAMPLE_BASE64 is required"))
	}
	if c.GatewayTimeout <= 0 {
		errs = append(errs, errors.New("GATEWAY_TIMEOUT must be positive"))
	}
	if c.GatewayMaxAttempts < 1 {
		errs = append(errs, errors.New("GATEWAY_MAX_ATTEMPTS must be at least 1"))
	}
	if c.MaxConcurrentRequests < 1 {
		errs = append(errs, errors.New("MAX_CONCURRENT_REQUESTS must be at least 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// RetryPolicy はゲートウェイ用の再試行方針を返します。
func (c *Config) RetryPolicy() generator.RetryPolicy {
	return generator.RetryPolicy{MaxAttempts: c.GatewayMaxAttempts, Backoff: c.GatewayRetryBackoff}
}

func loadEnvFiles(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("%w: %s の読み込みに失敗しました: %w", domain.ErrConfiguration, envFile, err)
		}
		return nil
	}
	for _, f := range DefaultEnvFiles {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("%w: %s の読み込みに失敗しました: %w", domain.ErrConfiguration, f, err)
		}
		slog.Debug("envファイルを読み込みました", "file", f)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int, errs *[]error) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// 秒数だけの指定も受け付ける
		if secs, convErr := strconv.Atoi(v); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func getLevel(key string, def slog.Level, errs *[]error) slog.Level {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return lvl
}
