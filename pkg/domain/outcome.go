package domain

// State はリクエスト1件の処理状態です。
type State int

const (
	StateReceived State = iota
	StateMaterialized
	StateValidated
	StateGatewayCalled
	StateNormalized
	StateDelivered
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "RECEIVED"
	case StateMaterialized:
		return "MATERIALIZED"
	case StateValidated:
		return "VALIDATED"
	case StateGatewayCalled:
		return "GATEWAY_CALLED"
	case StateNormalized:
		return "NORMALIZED"
	case StateDelivered:
		return "DELIVERED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal は DELIVERED または FAILED のとき true です。
func (s State) IsTerminal() bool {
	return s == StateDelivered || s == StateFailed
}

// Outcome はパイプラインの終端結果です。成功時は Result、失敗時は Kind と Err が設定されます。
type Outcome struct {
	RequestID string
	State     State
	Kind      FailureKind
	Err       error
	Message   string // ユーザーに表示する文言
	Trace     []State
	Result    *ProcessedResult
}

// Succeeded は配送まで完了したかを返します。
func (o Outcome) Succeeded() bool {
	return o.State == StateDelivered
}
