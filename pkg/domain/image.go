package domain

import "fmt"

// 出力画像の固定仕様です。
const (
	OutputWidth  = 600
	OutputHeight = 600
	OutputFormat = "png"
)

// FileHandle はメッセージング基盤側のファイル参照です。中身は基盤ごとに異なり、パイプラインは解釈しません。
type FileHandle string

// PhotoRequest はユーザーから届いた1件の写真送信を表します。
// パイプラインが終端状態に到達するまで、このリクエストを排他的に所有します。
type PhotoRequest struct {
	ID           string
	Source       FileHandle
	DeclaredMIME string
	FileName     string // ドキュメント送信時の元ファイル名（任意）
}

// ReferenceSample は全リクエストで共有される見本画像です。起動時に一度だけ読み込み、以後は変更しません。
type ReferenceSample struct {
	Data     []byte
	MIMEType string
	Origin   string // 読み込み元（パスまたは "inline"）
}

// Validate は見本画像が利用可能かを確認します。
func (s ReferenceSample) Validate() error {
	if len(s.Data) == 0 {
		return fmt.Errorf("%w: reference sample is empty", ErrConfiguration)
	}
	if s.MIMEType == "" {
		return fmt.Errorf("%w: reference sample has no MIME type", ErrConfiguration)
	}
	return nil
}

// GatewayImage は外部モデルの応答ストリームから取り出した最初のインライン画像です。
type GatewayImage struct {
	Data     []byte
	MIMEType string
}

// ProcessedResult は正規化済みの出力画像とそのメタデータです。配送後は保持しません。
type ProcessedResult struct {
	RequestID string
	Data      []byte
	Format    string
	Width     int
	Height    int
	FileName  string
	Caption   string
}
