package generator

import "time"

const (
	DefaultModel   = "gemini-2.5-flash-image-preview"
	DefaultTimeout = 120 * time.Second
)

// responseModalities は画像のみの応答を要求します。
var responseModalities = []string{"IMAGE"}

// Options はゲートウェイの設定です。
type Options struct {
	Model       string
	Instruction string
	Timeout     time.Duration // 1回の呼び出しの上限。0 以下なら DefaultTimeout
	Retry       RetryPolicy
}

// RetryPolicy はゲートウェイ失敗時の再試行方針です。ゼロ値は再試行なし。
// Backoff は初回の待ち時間で、以後は指数的に伸びます。0 の場合はライブラリの既定値を使います。
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}
