package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/dvphoto-bot/pkg/domain"
	"github.com/shouni/netarmor/retry"
)

// withRetry は RetryPolicy に従って fn を繰り返します。MaxAttempts が 1 なら1回だけ呼び出します。
// 呼び出し元のコンテキストが終了したら再試行しません。
func (g *GeminiGateway) withRetry(ctx context.Context, fn func(context.Context) (*domain.GatewayImage, error)) (*domain.GatewayImage, error) {
	maxAttempts := g.opts.Retry.attempts()
	if maxAttempts == 1 {
		return fn(ctx)
	}

	var (
		result  *domain.GatewayImage
		attempt int
	)
	op := func() error {
		attempt++
		if attempt > 1 {
			slog.WarnContext(ctx, "Gemini呼び出しを再試行します", "attempt", attempt, "max_attempts", maxAttempts)
		}
		img, err := fn(ctx)
		if err != nil {
			return err
		}
		result = img
		return nil
	}

	err := retry.Do(ctx, g.retryConfig(), fmt.Sprintf("Gemini画像補正（モデル: %s）", g.opts.Model), op, shouldRetry(ctx))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (g *GeminiGateway) retryConfig() retry.Config {
	return retry.Config{
		MaxRetries:      uint64(g.opts.Retry.attempts() - 1),
		InitialInterval: g.opts.Retry.Backoff,
	}
}

// shouldRetry は呼び出し元のコンテキストが生きている間だけ再試行を許可します。
func shouldRetry(ctx context.Context) retry.ShouldRetryFunc {
	return func(error) bool {
		return ctx.Err() == nil
	}
}
