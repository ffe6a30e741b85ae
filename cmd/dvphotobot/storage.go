package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-remote-io/pkg/s3factory"

	"github.com/shouni/dvphoto-bot/pkg/domain"
)

// クラウドストレージのファクトリです。テストで差し替えます。
var (
	newGCSFactory = gcsfactory.New
	newS3Factory  = s3factory.New
)

// storageIO はローカルパスと gs:// / s3:// の URI を読み書きする入出力です。
type storageIO struct {
	reader  remoteio.InputReader
	writer  remoteio.OutputWriter
	factory remoteio.IOFactory
}

// Close はクラウドストレージのクライアントを解放します。
func (s *storageIO) Close() error {
	if s == nil || s.factory == nil {
		return nil
	}
	return s.factory.Close()
}

// openStorage は uris のスキームを見て入出力を組み立てます。
// クライアントはクラウドの URI があるときだけ作ります。gs:// と s3:// の混在は受け付けません。
func openStorage(ctx context.Context, uris ...string) (*storageIO, error) {
	var useGCS, useS3 bool
	for _, u := range uris {
		useGCS = useGCS || remoteio.IsGCSURI(u)
		useS3 = useS3 || remoteio.IsS3URI(u)
	}

	var newFactory func(context.Context) (remoteio.IOFactory, error)
	switch {
	case useGCS && useS3:
		return nil, fmt.Errorf("%w: gs:// と s3:// は同時に指定できません", domain.ErrConfiguration)
	case useGCS:
		newFactory = newGCSFactory
	case useS3:
		newFactory = newS3Factory
	default:
		return &storageIO{
			reader: remoteio.NewUniversalInputReader(nil, nil),
			writer: remoteio.NewUniversalIOWriter(nil, nil),
		}, nil
	}

	factory, err := newFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: ストレージクライアントの初期化に失敗しました: %w", domain.ErrConfiguration, err)
	}
	reader, err := factory.InputReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, errors.Join(err, factory.Close()))
	}
	writer, err := factory.OutputWriter()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, errors.Join(err, factory.Close()))
	}
	return &storageIO{reader: reader, writer: writer, factory: factory}, nil
}
