package generator

import (
	"context"
	"iter"

	"google.golang.org/genai"
)

// ContentStreamer は外部モデルへのストリーミング呼び出しを抽象化するインターフェースです。
// 外向きのネットワーク I/O はここだけで行います。*genai.Models がこれを満たします。
type ContentStreamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}
