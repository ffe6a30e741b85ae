package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/dvphoto-bot/pkg/domain"
	"github.com/shouni/dvphoto-bot/pkg/imgutil"
	"google.golang.org/genai"
)

// GeminiGateway は見本画像・ユーザー画像・指示文を1メッセージにまとめて Gemini に送り、
// 応答ストリームから最初の画像を取り出すゲートウェイです。
type GeminiGateway struct {
	streamer ContentStreamer
	opts     Options
}

// NewGeminiGateway は依存関係を注入して GeminiGateway を初期化します。
func NewGeminiGateway(streamer ContentStreamer, opts Options) (*GeminiGateway, error) {
	if streamer == nil {
		return nil, fmt.Errorf("streamer (ContentStreamer) is required")
	}
	if strings.TrimSpace(opts.Instruction) == "" {
		return nil, fmt.Errorf("instruction is required")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	return &GeminiGateway{
		streamer: streamer,
		opts:     opts,
	}, nil
}

// Model は使用中のモデル名を返します。
func (g *GeminiGateway) Model() string {
	return g.opts.Model
}

// Generate は補正済み画像を1枚生成します。失敗はすべて domain.ErrGateway にまとめて返します。
func (g *GeminiGateway) Generate(ctx context.Context, sample domain.ReferenceSample, user []byte, userMIME string) (*domain.GatewayImage, error) {
	if err := sample.Validate(); err != nil {
		return nil, err
	}
	if len(user) == 0 {
		return nil, fmt.Errorf("%w: user image is empty", domain.ErrGateway)
	}
	if !imgutil.IsImageMIME(userMIME) {
		userMIME = imgutil.ResolveMIME(user, userMIME)
	}

	contents := buildContents(sample, user, userMIME, g.opts.Instruction)
	config := &genai.GenerateContentConfig{ResponseModalities: responseModalities}

	slog.InfoContext(ctx, "Geminiに画像補正をリクエストします",
		"model", g.opts.Model, "sample_mime", sample.MIMEType, "user_mime", userMIME, "user_bytes", len(user))

	start := time.Now()
	img, err := g.withRetry(ctx, func(ctx context.Context) (*domain.GatewayImage, error) {
		return g.generateOnce(ctx, contents, config)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Geminiから画像を受信しました",
		"mime", img.MIMEType, "bytes", len(img.Data), "duration", time.Since(start))
	return img, nil
}

// generateOnce はタイムアウト付きで1回だけストリーミング呼び出しを行います。
func (g *GeminiGateway) generateOnce(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*domain.GatewayImage, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	img, err := scanStream(callCtx, g.streamer.GenerateContentStream(callCtx, g.opts.Model, contents, config))
	if err != nil {
		return nil, fmt.Errorf("%w: Gemini画像補正エラー: %w", domain.ErrGateway, err)
	}
	return img, nil
}

// buildContents は 見本画像 → ユーザー画像 → 指示文 の順で1つのユーザーメッセージを組み立てます。
func buildContents(sample domain.ReferenceSample, user []byte, userMIME, instruction string) []*genai.Content {
	parts := []*genai.Part{
		genai.NewPartFromBytes(sample.Data, sample.MIMEType),
		genai.NewPartFromBytes(user, userMIME),
		genai.NewPartFromText(instruction),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}
