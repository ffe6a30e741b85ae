package generator

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/shouni/dvphoto-bot/pkg/domain"
	"github.com/shouni/dvphoto-bot/pkg/imgutil"
	"google.golang.org/genai"
)

var errNoImage = errors.New("画像データが見つかりませんでした")

// scanStream は応答チャンクを順に読み、インライン画像を含む最初のチャンクで読み取りを止めます。
// 複数チャンクの結合は行いません。range を抜けるとイテレータ側の受信も止まります。
func scanStream(ctx context.Context, stream iter.Seq2[*genai.GenerateContentResponse, error]) (*domain.GatewayImage, error) {
	var lastFinish genai.FinishReason

	for resp, err := range stream {
		if err != nil {
			return nil, fmt.Errorf("ストリーム受信中にエラーが発生しました: %w", err)
		}
		if img := firstInlineImage(resp); img != nil {
			return img, nil
		}
		if reason := finishReason(resp); reason != "" {
			lastFinish = reason
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// 安全フィルター等によるブロックの確認
	if lastFinish != "" && lastFinish != genai.FinishReasonUnspecified && lastFinish != genai.FinishReasonStop {
		return nil, fmt.Errorf("%w (FinishReason: %s)", errNoImage, lastFinish)
	}
	return nil, errNoImage
}

// firstInlineImage は candidates[0].content.parts から空でないインライン画像を探します。
// 経路が欠けているチャンクは nil を返し、呼び出し側で読み飛ばします。
func firstInlineImage(resp *genai.GenerateContentResponse) *domain.GatewayImage {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return nil
	}
	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = imgutil.DetectMIME(part.InlineData.Data)
		}
		return &domain.GatewayImage{Data: part.InlineData.Data, MIMEType: mimeType}
	}
	return nil
}

func finishReason(resp *genai.GenerateContentResponse) genai.FinishReason {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	return resp.Candidates[0].FinishReason
}
