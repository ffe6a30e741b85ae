package imgutil

import "encoding/base64"

// EncodeBase64 は画像バイト列をテキスト安全な形式に変換します。
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 は EncodeBase64 の逆変換です。
func DecodeBase64(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}
