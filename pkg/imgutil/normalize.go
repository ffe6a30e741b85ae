package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/shouni/dvphoto-bot/pkg/domain"
)

// Normalize は外部モデルが返した画像を 600x600 の RGB PNG に変換します。
//
// 透過ピクセルは白背景に合成してから不透明化します（証明写真の背景色）。
// アスペクト比は維持せず、正方形に引き伸ばします。
// リサンプリングは Lanczos 固定のため、同じ入力からは同じ出力が得られます。
func Normalize(data []byte) ([]byte, error) {
	return NormalizeTo(data, domain.OutputWidth, domain.OutputHeight)
}

// NormalizeTo は出力サイズを指定できる Normalize です。
func NormalizeTo(data []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid target size %dx%d", domain.ErrNormalize, width, height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %w", domain.ErrNormalize, err)
	}

	rgb := flattenOnWhite(src)
	resized := imaging.Resize(rgb, width, height, imaging.Lanczos)
	forceOpaque(resized)

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, resized); err != nil {
		return nil, fmt.Errorf("%w: encode: %w", domain.ErrNormalize, err)
	}
	return buf.Bytes(), nil
}

// flattenOnWhite は任意のカラーモデル（パレット、グレースケール、アルファ付き）を白背景の NRGBA に変換します。
func flattenOnWhite(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

// forceOpaque は丸め誤差で残ったアルファを 255 に揃えます。PNG エンコーダは不透明画像を RGB として書き出します。
func forceOpaque(img *image.NRGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}
