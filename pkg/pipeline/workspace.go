package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// 作業ディレクトリ内のファイル名です。
const (
	uploadBaseName     = "upload"
	processedBaseName  = "processed_image"
	normalizedFileName = "processed_image_600x600.png"
)

// workspace は1リクエスト専用の一時ディレクトリです。Close は何度呼んでも削除を1回だけ行います。
type workspace struct {
	dir       string
	removeAll func(string) error
	once      sync.Once
	closeErr  error
}

func openWorkspace(baseDir, requestID string, removeAll func(string) error) (*workspace, error) {
	if baseDir != "" {
		if err := os.MkdirAll(baseDir, 0o755); err != nil {
			return nil, fmt.Errorf("一時ディレクトリの作成に失敗しました: %w", err)
		}
	}
	dir, err := os.MkdirTemp(baseDir, "dvphoto-"+safeName(requestID)+"-*")
	if err != nil {
		return nil, fmt.Errorf("作業ディレクトリの作成に失敗しました: %w", err)
	}
	if removeAll == nil {
		removeAll = os.RemoveAll
	}
	return &workspace{dir: dir, removeAll: removeAll}, nil
}

// write は作業ディレクトリ直下に name でファイルを書き出し、そのパスを返します。
func (w *workspace) write(name string, data []byte) (string, error) {
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("%s の書き込みに失敗しました: %w", name, err)
	}
	return path, nil
}

// Close は作業ディレクトリを中身ごと削除します。
func (w *workspace) Close() error {
	w.once.Do(func() {
		w.closeErr = w.removeAll(w.dir)
		if w.closeErr != nil {
			slog.Warn("作業ディレクトリの削除に失敗しました", "dir", w.dir, "error", w.closeErr)
		}
	})
	return w.closeErr
}

// safeName はディレクトリ名に使えない文字を "_" に置き換えます。
func safeName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
