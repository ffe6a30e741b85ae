package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestScanStream_StopsAtFirstImageChunk(t *testing.T) {
	const n, k = 6, 3
	chunks := make([]*genai.GenerateContentResponse, n)
	for i := range chunks {
		chunks[i] = textChunk("thinking")
	}
	chunks[k] = imageChunk([]byte("chunk-k"), "image/png")
	// k 以降にも画像があるが、読まれてはいけない
	chunks[k+1] = imageChunk([]byte("too-late"), "image/png")

	m := &mockStreamer{scripts: []streamScript{{chunks: chunks}}}
	img, err := scanStream(context.Background(), m.GenerateContentStream(context.Background(), "m", nil, nil))

	require.NoError(t, err)
	assert.Equal(t, []byte("chunk-k"), img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, k+1, m.yielded, "no chunk after k may be consumed")
}

func TestScanStream_SkipsMalformedChunks(t *testing.T) {
	chunks := []*genai.GenerateContentResponse{
		nil,
		{},
		{Candidates: []*genai.Candidate{nil}},
		{Candidates: []*genai.Candidate{{}}},
		{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
		{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{nil}}}}},
		imageChunk(nil, "image/png"), // 空の画像データ
		textChunk("text only"),
		imageChunk([]byte("real"), "image/jpeg"),
	}

	m := &mockStreamer{scripts: []streamScript{{chunks: chunks}}}
	img, err := scanStream(context.Background(), m.GenerateContentStream(context.Background(), "m", nil, nil))

	require.NoError(t, err)
	assert.Equal(t, []byte("real"), img.Data)
	assert.Equal(t, "image/jpeg", img.MIMEType)
}

func TestScanStream_Failures(t *testing.T) {
	t.Run("画像を含むチャンクがなければエラー", func(t *testing.T) {
		m := &mockStreamer{scripts: []streamScript{{chunks: []*genai.GenerateContentResponse{textChunk("a"), textChunk("b")}}}}
		_, err := scanStream(context.Background(), m.GenerateContentStream(context.Background(), "m", nil, nil))
		assert.ErrorIs(t, err, errNoImage)
	})

	t.Run("空のストリームはエラー", func(t *testing.T) {
		m := &mockStreamer{scripts: []streamScript{{}}}
		_, err := scanStream(context.Background(), m.GenerateContentStream(context.Background(), "m", nil, nil))
		assert.ErrorIs(t, err, errNoImage)
	})

	t.Run("ストリームのエラーはそのまま包んで返す", func(t *testing.T) {
		m := &mockStreamer{scripts: []streamScript{{chunks: []*genai.GenerateContentResponse{textChunk("a")}, err: errNetwork}}}
		_, err := scanStream(context.Background(), m.GenerateContentStream(context.Background(), "m", nil, nil))
		assert.ErrorIs(t, err, errNetwork)
	})

	t.Run("FinishReasonがSAFETYならエラーに含める", func(t *testing.T) {
		blocked := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}}
		m := &mockStreamer{scripts: []streamScript{{chunks: []*genai.GenerateContentResponse{blocked}}}}
		_, err := scanStream(context.Background(), m.GenerateContentStream(context.Background(), "m", nil, nil))
		require.ErrorIs(t, err, errNoImage)
		assert.Contains(t, err.Error(), string(genai.FinishReasonSafety))
	})
}

func TestFirstInlineImage_DetectsMissingMIME(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90w\x53\xde")
	img := firstInlineImage(imageChunk(png, ""))
	require.NotNil(t, img)
	assert.Equal(t, "image/png", img.MIMEType)
}
