package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/shouni/dvphoto-bot/pkg/domain"
	"google.golang.org/genai"
)

// NewGenAIClient は Gemini API バックエンドの genai クライアントを作成します。
// 返り値の Models フィールドが ContentStreamer として使えます。
func NewGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is required", domain.ErrConfiguration)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: genaiクライアントの作成に失敗しました: %w", domain.ErrConfiguration, err)
	}
	return client, nil
}
