package imgutil

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultExtension は MIME タイプから拡張子を決められなかったときに使います。
const DefaultExtension = ".png"

// DetectMIME はバイト列の中身から MIME タイプを判定します。
func DetectMIME(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsImageMIME は image/* かどうかを返します。
func IsImageMIME(mime string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
}

// ResolveMIME は中身から判定した MIME を優先し、画像と判定できなければ申告値を使います。
func ResolveMIME(data []byte, declared string) string {
	if detected := DetectMIME(data); IsImageMIME(detected) {
		return detected
	}
	if IsImageMIME(declared) {
		return declared
	}
	return "image/jpeg"
}

// ExtensionFor は MIME タイプに対応する拡張子（ドット付き）を返します。
func ExtensionFor(mime string) string {
	m := mimetype.Lookup(strings.TrimSpace(mime))
	if m == nil || m.Extension() == "" {
		return DefaultExtension
	}
	return m.Extension()
}
