package generator

import (
	"context"
	"errors"
	"iter"

	"github.com/shouni/dvphoto-bot/pkg/domain"
	"google.golang.org/genai"
)

// --- Mocks ---

// streamScript は1回の呼び出しで流すチャンクと、最後に返すエラーです。
type streamScript struct {
	chunks []*genai.GenerateContentResponse
	err    error
	block  bool // ctx が終わるまでブロックする（停止したストリームの再現）
}

// mockStreamer は ContentStreamer のテスト用モックです。呼び出しごとに scripts を順に使います。
type mockStreamer struct {
	scripts []streamScript

	calls    int
	yielded  int
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (m *mockStreamer) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	idx := m.calls
	m.calls++
	m.model = model
	m.contents = contents
	m.config = config

	var script streamScript
	if idx < len(m.scripts) {
		script = m.scripts[idx]
	} else if len(m.scripts) > 0 {
		script = m.scripts[len(m.scripts)-1]
	}

	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		if script.block {
			<-ctx.Done()
			yield(nil, ctx.Err())
			return
		}
		for _, chunk := range script.chunks {
			m.yielded++
			if !yield(chunk, nil) {
				return
			}
		}
		if script.err != nil {
			yield(nil, script.err)
		}
	}
}

func imageChunk(data []byte, mime string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mime, Data: data}}},
			},
		}},
	}
}

func textChunk(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

var errNetwork = errors.New("connection reset by peer")

func testSample() domain.ReferenceSample {
	return domain.ReferenceSample{Data: []byte("sample-png"), MIMEType: "image/png", Origin: "test"}
}
