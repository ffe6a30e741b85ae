package adapters

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/dvphoto-bot/pkg/domain"
	"github.com/shouni/dvphoto-bot/pkg/pipeline"
)

var errAPI = errors.New("telegram unavailable")

// fakeBotAPI は送信内容を記録する BotAPI です。
type fakeBotAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int

	sendErr func(c tgbotapi.Chattable) error
	fileURL string
	fileErr error
}

func (f *fakeBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		if err := f.sendErr(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeBotAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBotAPI) GetFileDirectURL(fileID string) (string, error) {
	if f.fileErr != nil {
		return "", f.fileErr
	}
	return f.fileURL + fileID, nil
}

// texts は送信したテキストメッセージと編集後テキストを順に返します。
func (f *fakeBotAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, "edit:"+m.Text)
		}
	}
	return out
}

func (f *fakeBotAPI) documents() []tgbotapi.DocumentConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.DocumentConfig
	for _, c := range f.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

func (f *fakeBotAPI) photos() []tgbotapi.PhotoConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok {
			out = append(out, p)
		}
	}
	return out
}

// mockHTTPClient は httpkit.ClientInterface のうち FetchBytes だけを差し替えます。
type mockHTTPClient struct {
	httpkit.ClientInterface
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
	urls      []string
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.urls = append(m.urls, url)
	return m.fetchFunc(ctx, url)
}

// stubProcessor は受け取ったリクエストを記録し、固定の Outcome を返します。
// deliver が true なら Deliverer に結果を渡します。
type stubProcessor struct {
	mu       sync.Mutex
	requests []domain.PhotoRequest
	outcome  domain.Outcome
	deliver  bool
	delay    time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
}

func (s *stubProcessor) Process(ctx context.Context, req domain.PhotoRequest, _ pipeline.Fetcher, d pipeline.Deliverer) domain.Outcome {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		cur := s.maxActive.Load()
		if n <= cur || s.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	out := s.outcome
	out.RequestID = req.ID
	if s.deliver {
		res := &domain.ProcessedResult{RequestID: req.ID, Data: []byte("png"), FileName: "dv_lottery_photo_600x600.png", Caption: "done"}
		if err := d.Deliver(ctx, res); err != nil {
			out.State = domain.StateFailed
			out.Err = err
		}
	}
	return out
}

func (s *stubProcessor) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
