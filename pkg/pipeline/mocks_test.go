package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"iter"
	"sync"
	"testing"

	"github.com/shouni/dvphoto-bot/pkg/domain"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

var errBoom = errors.New("boom")

// stubGenerator は固定の応答を返す Generator です。
type stubGenerator struct {
	mu       sync.Mutex
	out      *domain.GatewayImage
	err      error
	calls    int
	lastUser []byte
	lastMIME string
}

func (s *stubGenerator) Generate(_ context.Context, _ domain.ReferenceSample, user []byte, userMIME string) (*domain.GatewayImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastUser = user
	s.lastMIME = userMIME
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

// bytesFetcher はハンドルに関係なく固定のバイト列を返します。
type bytesFetcher struct {
	data  []byte
	err   error
	calls int
}

func (f *bytesFetcher) FetchBytes(_ context.Context, _ domain.FileHandle) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

// recordingDeliverer は受け取った結果を記録します。
type recordingDeliverer struct {
	err       error
	delivered []*domain.ProcessedResult
}

func (d *recordingDeliverer) Deliver(_ context.Context, r *domain.ProcessedResult) error {
	if d.err != nil {
		return d.err
	}
	d.delivered = append(d.delivered, r)
	return nil
}

// textOnlyStreamer は画像を含まないチャンクだけを返す ContentStreamer です。
type textOnlyStreamer struct {
	chunks int
	calls  int
}

func (s *textOnlyStreamer) GenerateContentStream(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	s.calls++
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for range s.chunks {
			resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: genai.NewContentFromText("I cannot edit this photo.", genai.RoleModel),
			}}}
			if !yield(resp, nil) {
				return
			}
		}
	}
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, &jpeg.Options{Quality: 85}))
	return buf.Bytes()
}

func encodeRGBAPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Pix[3] = 0 // 透明な画素を1つ含める
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}
