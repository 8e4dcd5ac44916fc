package trading

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/assist-by/stopguard/internal/domain"
	"github.com/assist-by/stopguard/internal/exchange"
	"github.com/assist-by/stopguard/internal/position"
)

// Flow는 사용자 명령 하나에 대응하는 거래 흐름입니다
type Flow string

const (
	FlowBuy              Flow = "buy"
	FlowBuyProtected     Flow = "buy_protected"
	FlowProtect          Flow = "protect"
	FlowLiquidate        Flow = "liquidate"
	FlowCancelProtective Flow = "cancel"
	FlowCancelAll        Flow = "cancel_all"
)

// FlowState는 흐름 진행 단계입니다
type FlowState string

const (
	StateIdle                     FlowState = "Idle"
	StateSizing                   FlowState = "Sizing"
	StateSubmittingBuy            FlowState = "Submitting(Buy)"
	StateAggregating              FlowState = "Aggregating"
	StateComputingProtection      FlowState = "ComputingProtection"
	StateQueryingPostTradeBalance FlowState = "QueryingPostTradeBalance"
	StateSubmittingProtective     FlowState = "Submitting(Protective)"
	StateCancelProtective         FlowState = "CancelProtective"
	StateSubmittingSell           FlowState = "Submitting(Sell)"
	StateDone                     FlowState = "Done"
	StateFailed                   FlowState = "Failed"
)

// ErrUnprotectedPosition은 매수는 체결됐지만 보호 주문을 걸지 못했음을 나타냅니다.
// 매수는 되돌리지 않습니다.
var ErrUnprotectedPosition = errors.New("매수 체결 후 보호 주문이 설정되지 않았습니다")

// FlowError는 흐름이 실패한 단계와 원인을 담습니다
type FlowError struct {
	Flow   Flow
	State  FlowState
	Symbol string
	Err    error

	// Unprotected는 매수가 이미 체결된 뒤 실패했는지 여부입니다
	Unprotected bool
}

func (e *FlowError) Error() string {
	msg := fmt.Sprintf("%s 실패 [%s, 단계: %s]: %v", e.Flow, e.Symbol, e.State, e.Err)
	if e.Unprotected {
		msg = "⚠️ 보호되지 않은 포지션 - " + msg
	}
	return msg
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// Is는 Unprotected인 경우 ErrUnprotectedPosition과 일치합니다
func (e *FlowError) Is(target error) bool {
	return target == ErrUnprotectedPosition && e.Unprotected
}

// TradeResult는 흐름 실행 결과입니다. 실패한 경우에도 그때까지의 진행 내용을 담습니다.
type TradeResult struct {
	Flow       Flow
	Symbol     string
	States     []FlowState
	Buy        *domain.OrderResponse
	Sell       *domain.OrderResponse
	Protective *position.OrderHandle
	AvgPrice   decimal.Decimal
	Quantity   decimal.Decimal
	Canceled   int
	Skipped    bool
}

// Preview는 주문 없이 계산한 퍼센트 매수 예상치입니다
type Preview struct {
	Symbol    string
	BaseAsset string
	Balance   decimal.Decimal
	Spend     decimal.Decimal
	Price     decimal.Decimal
	Quantity  decimal.Decimal
}

// Kind는 화면 표시용 에러 분류입니다
type Kind string

const (
	KindValidation         Kind = "ValidationError"
	KindSymbolNotFound     Kind = "SymbolNotFound"
	KindNoFills            Kind = "NoFills"
	KindZeroFilledQuantity Kind = "ZeroFilledQuantity"
	KindZeroQuantity       Kind = "ZeroQuantity"
	KindExchangeRejected   Kind = "ExchangeRejected"
	KindTransport          Kind = "TransportError"
	KindUnknown            Kind = "Unknown"
)

// KindOf는 에러를 분류합니다
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, position.ErrValidation):
		return KindValidation
	case errors.Is(err, exchange.ErrSymbolNotFound):
		return KindSymbolNotFound
	case errors.Is(err, position.ErrNoFills):
		return KindNoFills
	case errors.Is(err, position.ErrZeroFilledQuantity):
		return KindZeroFilledQuantity
	case errors.Is(err, position.ErrZeroQuantity):
		return KindZeroQuantity
	case errors.Is(err, exchange.ErrRejected):
		return KindExchangeRejected
	case errors.Is(err, exchange.ErrTransport):
		return KindTransport
	default:
		return KindUnknown
	}
}
