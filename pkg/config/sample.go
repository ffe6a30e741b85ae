package config

import (
	"context"
	"fmt"
	"io"

	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/dvphoto-bot/pkg/domain"
	"github.com/shouni/dvphoto-bot/pkg/imgutil"
)

// LoadReferenceSample は見本画像を一度だけ読み込みます。
// REFERENCE_SAMPLE_BASE64 が設定されていればファイルより優先します。
// REFERENCE_SAMPLE_PATH はローカルパスのほか gs:// / s3:// の URI を受け付けます。
func LoadReferenceSample(ctx context.Context, c *Config, reader remoteio.InputReader) (domain.ReferenceSample, error) {
	var (
		data   []byte
		origin string
		err    error
	)

	if c.ReferenceSampleBase64 != "" {
		origin = "inline"
		data, err = imgutil.DecodeBase64(c.ReferenceSampleBase64)
		if err != nil {
			return domain.ReferenceSample{}, fmt.Errorf("%w: REFERENCE_SAMPLE_BASE64 のデコードに失敗しました: %w", domain.ErrConfiguration, err)
		}
	} else {
		origin = c.ReferenceSamplePath
		data, err = readAll(ctx, reader, c.ReferenceSamplePath)
		if err != nil {
			return domain.ReferenceSample{}, fmt.Errorf("%w: Sample image not found: %s: %w", domain.ErrConfiguration, c.ReferenceSamplePath, err)
		}
	}

	if !imgutil.Validate(data) {
		return domain.ReferenceSample{}, fmt.Errorf("%w: reference sample %s is not a decodable image", domain.ErrConfiguration, origin)
	}

	sample := domain.ReferenceSample{
		Data:     data,
		MIMEType: imgutil.ResolveMIME(data, "image/png"),
		Origin:   origin,
	}
	if err := sample.Validate(); err != nil {
		return domain.ReferenceSample{}, err
	}
	return sample, nil
}

func readAll(ctx context.Context, reader remoteio.InputReader, path string) ([]byte, error) {
	if reader == nil {
		return nil, fmt.Errorf("input reader is required")
	}
	rc, err := reader.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
