package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/dvphoto-bot/pkg/domain"
	"github.com/shouni/dvphoto-bot/pkg/imgutil"
)

// StorageFetcher はファイルハンドルをローカルパスまたは gs:// / s3:// の URI として読み込みます。
// Base64 が true なら、中身を base64 テキストとして復号します。
type StorageFetcher struct {
	Reader remoteio.InputReader
	Base64 bool
}

func (f StorageFetcher) FetchBytes(ctx context.Context, handle domain.FileHandle) ([]byte, error) {
	if f.Reader == nil {
		return nil, fmt.Errorf("%w: input reader is required", domain.ErrConfiguration)
	}
	rc, err := f.Reader.Open(ctx, string(handle))
	if err != nil {
		return nil, fmt.Errorf("%w: 入力の読み込みに失敗しました: %w", domain.ErrTransport, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: 入力の読み込みに失敗しました: %w", domain.ErrTransport, err)
	}
	if !f.Base64 {
		return data, nil
	}
	decoded, err := imgutil.DecodeBase64(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return decoded, nil
}

// StorageDeliverer は処理結果を Path（ローカルパスまたは gs:// / s3:// の URI）に書き出します。
// Base64 が true なら base64 テキストで書き出します。
type StorageDeliverer struct {
	Writer remoteio.OutputWriter
	Path   string
	Base64 bool
}

func (d StorageDeliverer) Deliver(ctx context.Context, result *domain.ProcessedResult) error {
	if d.Writer == nil {
		return fmt.Errorf("%w: output writer is required", domain.ErrConfiguration)
	}
	if d.Path == "" {
		return fmt.Errorf("%w: output path is required", domain.ErrTransport)
	}
	data, contentType := result.Data, "image/"+result.Format
	if result.Format == "" {
		contentType = "image/png"
	}
	if d.Base64 {
		data, contentType = []byte(imgutil.EncodeBase64(result.Data)), "text/plain"
	}
	if err := d.Writer.Write(ctx, d.Path, bytes.NewReader(data), contentType); err != nil {
		return fmt.Errorf("%w: 出力の書き込みに失敗しました: %w", domain.ErrTransport, err)
	}
	return nil
}
