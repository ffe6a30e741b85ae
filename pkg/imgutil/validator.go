package imgutil

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Validate はバイト列が画像として最後までデコードできるかを判定します。
// ヘッダーの判定だけでなくピクセルデータまで読み込むため、途中で切れたファイルも false になります。
// 入力は変更しません。
func Validate(data []byte) (ok bool) {
	if len(data) == 0 {
		return false
	}
	// 壊れた入力でデコーダが panic しても invalid として扱う
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil || img == nil {
		return false
	}
	b := img.Bounds()
	return b.Dx() > 0 && b.Dy() > 0
}
