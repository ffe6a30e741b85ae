package pipeline

import (
	"context"

	"github.com/shouni/dvphoto-bot/pkg/domain"
)

// Fetcher はファイルハンドルの実体をバイト列として取得します。
type Fetcher interface {
	FetchBytes(ctx context.Context, handle domain.FileHandle) ([]byte, error)
}

// Deliverer は正規化済みの画像を要求元へ返します。
type Deliverer interface {
	Deliver(ctx context.Context, result *domain.ProcessedResult) error
}

// Generator は外部モデルのゲートウェイです。generator.GeminiGateway が満たします。
type Generator interface {
	Generate(ctx context.Context, sample domain.ReferenceSample, user []byte, userMIME string) (*domain.GatewayImage, error)
}

// Normalizer はゲートウェイ出力を配送用の形式へ変換します。
type Normalizer func(data []byte) ([]byte, error)
