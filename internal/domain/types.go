package domain

// OrderSide는 주문 방향을 정의합니다
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// OrderType은 주문 유형을 정의합니다
type OrderType string

const (
	Market          OrderType = "MARKET"
	Limit           OrderType = "LIMIT"
	StopLoss        OrderType = "STOP_LOSS"
	StopLossLimit   OrderType = "STOP_LOSS_LIMIT"
	TakeProfit      OrderType = "TAKE_PROFIT"
	TakeProfitLimit OrderType = "TAKE_PROFIT_LIMIT"
	LimitMaker      OrderType = "LIMIT_MAKER"
)

// IsProtective는 손절/익절 계열 주문인지 확인합니다
func (t OrderType) IsProtective() bool {
	switch t {
	case StopLoss, StopLossLimit, TakeProfit, TakeProfitLimit:
		return true
	default:
		return false
	}
}

// TimeInForce는 주문 유효 기간을 정의합니다. 보호 주문은 GTC만 사용합니다.
type TimeInForce string

const GTC TimeInForce = "GTC"

// ErrorCode는 API 에러 코드를 정의합니다
const (
	ErrCodeInvalidSymbol = -1121 // 존재하지 않는 심볼
)
