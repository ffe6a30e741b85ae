// Package pipeline は写真1件を 受信 → 一時保存 → 検証 → 補正 → 正規化 → 配送 の順に処理します。
// どの経路で終わっても作業ディレクトリは必ず削除されます。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shouni/dvphoto-bot/pkg/domain"
	"github.com/shouni/dvphoto-bot/pkg/imgutil"
	"github.com/shouni/dvphoto-bot/pkg/prompt"
)

// Config はパイプラインの依存関係です。
type Config struct {
	Sample    domain.ReferenceSample
	Generator Generator
	Normalize Normalizer // nil なら imgutil.Normalize
	TempDir   string     // 空なら os.TempDir()
	Messages  prompt.Messages

	OutputFileName string
	Caption        string
}

// Pipeline はリクエスト間で状態を共有しません。見本画像と設定は読み取り専用です。
type Pipeline struct {
	cfg       Config
	removeAll func(string) error
}

// New は Pipeline を初期化します。
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Sample.Validate(); err != nil {
		return nil, err
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("%w: generator is required", domain.ErrConfiguration)
	}
	if cfg.Normalize == nil {
		cfg.Normalize = imgutil.Normalize
	}
	if cfg.OutputFileName == "" {
		cfg.OutputFileName = normalizedFileName
	}
	return &Pipeline{cfg: cfg, removeAll: os.RemoveAll}, nil
}

// run は Process 1回分の進行を記録します。
type run struct {
	ctx     context.Context
	outcome domain.Outcome
	start   time.Time
}

func (r *run) advance(s domain.State) {
	r.outcome.State = s
	r.outcome.Trace = append(r.outcome.Trace, s)
	slog.DebugContext(r.ctx, "状態遷移", "request_id", r.outcome.RequestID, "state", s.String())
}

func (r *run) fail(err error, message string) domain.Outcome {
	r.outcome.Kind = domain.KindOf(err)
	r.outcome.Err = err
	r.outcome.Message = message
	r.advance(domain.StateFailed)
	slog.WarnContext(r.ctx, "写真の処理に失敗しました",
		"request_id", r.outcome.RequestID,
		"kind", r.outcome.Kind.String(),
		"error", err,
		"duration", time.Since(r.start))
	return r.outcome
}

// Process は1件のリクエストを終端状態まで進めます。どの経路でも作業ディレクトリは削除済みで返ります。
func (p *Pipeline) Process(ctx context.Context, req domain.PhotoRequest, fetcher Fetcher, deliverer Deliverer) domain.Outcome {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	r := &run{
		ctx:     ctx,
		outcome: domain.Outcome{RequestID: req.ID, State: domain.StateReceived, Trace: []domain.State{domain.StateReceived}},
		start:   time.Now(),
	}
	msgs := p.cfg.Messages
	slog.InfoContext(ctx, "写真を受信しました", "request_id", req.ID, "declared_mime", req.DeclaredMIME)

	if fetcher == nil || deliverer == nil {
		return r.fail(fmt.Errorf("%w: fetcher and deliverer are required", domain.ErrConfiguration), msgs.ProcessingFailed)
	}

	ws, err := openWorkspace(p.cfg.TempDir, req.ID, p.removeAll)
	if err != nil {
		return r.fail(fmt.Errorf("%w: %w", domain.ErrTransport, err), msgs.ProcessingFailed)
	}
	defer ws.Close()

	// MATERIALIZED
	raw, err := fetcher.FetchBytes(ctx, req.Source)
	if err != nil {
		return r.fail(asKind(domain.ErrTransport, fmt.Errorf("写真の取得に失敗しました: %w", err)), msgs.ProcessingFailed)
	}
	userMIME := imgutil.ResolveMIME(raw, req.DeclaredMIME)
	uploadPath, err := ws.write(uploadBaseName+imgutil.ExtensionFor(userMIME), raw)
	if err != nil {
		return r.fail(fmt.Errorf("%w: %w", domain.ErrTransport, err), msgs.ProcessingFailed)
	}
	r.advance(domain.StateMaterialized)

	// VALIDATED
	user, err := os.ReadFile(uploadPath)
	if err != nil || !imgutil.Validate(user) {
		return r.fail(fmt.Errorf("%w: %s", domain.ErrValidation, uploadPath), msgs.InvalidImage)
	}
	r.advance(domain.StateValidated)

	// GATEWAY_CALLED
	corrected, err := p.cfg.Generator.Generate(ctx, p.cfg.Sample, user, userMIME)
	if err != nil {
		return r.fail(asKind(domain.ErrGateway, err), msgs.ProcessingFailed)
	}
	if corrected == nil || len(corrected.Data) == 0 {
		return r.fail(fmt.Errorf("%w: empty gateway result", domain.ErrGateway), msgs.ProcessingFailed)
	}
	if _, err := ws.write(processedBaseName+imgutil.ExtensionFor(corrected.MIMEType), corrected.Data); err != nil {
		return r.fail(fmt.Errorf("%w: %w", domain.ErrNormalize, err), msgs.ProcessingFailed)
	}
	r.advance(domain.StateGatewayCalled)

	// NORMALIZED
	normalized, err := p.cfg.Normalize(corrected.Data)
	if err != nil {
		return r.fail(asKind(domain.ErrNormalize, err), msgs.ProcessingFailed)
	}
	if _, err := ws.write(normalizedFileName, normalized); err != nil {
		return r.fail(fmt.Errorf("%w: %w", domain.ErrNormalize, err), msgs.ProcessingFailed)
	}
	r.advance(domain.StateNormalized)

	// DELIVERED
	result := &domain.ProcessedResult{
		RequestID: req.ID,
		Data:      normalized,
		Format:    domain.OutputFormat,
		Width:     domain.OutputWidth,
		Height:    domain.OutputHeight,
		FileName:  p.cfg.OutputFileName,
		Caption:   p.cfg.Caption,
	}
	if err := deliverer.Deliver(ctx, result); err != nil {
		return r.fail(asKind(domain.ErrTransport, err), msgs.DeliveryFailed)
	}
	r.outcome.Result = result
	r.outcome.Message = msgs.Success
	r.advance(domain.StateDelivered)

	slog.InfoContext(ctx, "写真の補正が完了しました",
		"request_id", req.ID, "bytes", len(normalized), "duration", time.Since(r.start))
	return r.outcome
}

// asKind は err がまだ分類されていなければ sentinel で包みます。
func asKind(sentinel, err error) error {
	for _, s := range []error{domain.ErrConfiguration, domain.ErrValidation, domain.ErrGateway, domain.ErrNormalize, domain.ErrTransport} {
		if errors.Is(err, s) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
