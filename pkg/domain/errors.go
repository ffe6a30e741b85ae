package domain

import "errors"

// エラー分類です。各コンポーネントは自身の境界でこれらのいずれかにラップして返します。
var (
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("invalid image")
	ErrGateway       = errors.New("gateway error")
	ErrNormalize     = errors.New("normalize error")
	ErrTransport     = errors.New("transport error")
)

// FailureKind は失敗の分類です。
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureConfiguration
	FailureValidation
	FailureGateway
	FailureNormalize
	FailureTransport
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureConfiguration:
		return "configuration"
	case FailureValidation:
		return "validation"
	case FailureGateway:
		return "gateway"
	case FailureNormalize:
		return "normalize"
	case FailureTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// KindOf はエラーチェーンから分類を判定します。分類できないものは FailureGateway として扱います。
func KindOf(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrConfiguration):
		return FailureConfiguration
	case errors.Is(err, ErrValidation):
		return FailureValidation
	case errors.Is(err, ErrNormalize):
		return FailureNormalize
	case errors.Is(err, ErrTransport):
		return FailureTransport
	default:
		return FailureGateway
	}
}
