package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeFilters는 심볼별 거래 제약 조건입니다
type ExchangeFilters struct {
	PriceIncrement    decimal.Decimal // 가격 최소 단위 (tickSize)
	QuantityIncrement decimal.Decimal // 수량 최소 단위 (stepSize)
	MinNotional       decimal.Decimal // 최소 주문 가치
}

// SymbolInfo는 거래소가 보고한 심볼 메타데이터입니다.
// 필터 값은 거래소가 해당 필터를 보내지 않은 경우 Valid가 false입니다.
type SymbolInfo struct {
	Symbol      string
	BaseAsset   string // 거래 대상 자산 (예: BTC)
	QuoteAsset  string // 가격 표시 자산 (예: USDT)
	TickSize    decimal.NullDecimal
	StepSize    decimal.NullDecimal
	MinNotional decimal.NullDecimal
}

// Fill은 한 주문의 부분 체결 하나를 표현합니다
type Fill struct {
	Price           decimal.Decimal `json:"price"`
	Quantity        decimal.Decimal `json:"qty"`
	Commission      decimal.Decimal `json:"commission"`
	CommissionAsset string          `json:"commissionAsset"`
	TradeID         int64           `json:"tradeId"`
}

// StopSpec은 보호용 스탑 리밋 주문의 가격/수량입니다.
// 생성 이후 TriggerPrice >= LimitPrice가 항상 성립합니다.
type StopSpec struct {
	TriggerPrice decimal.Decimal // stopPrice
	LimitPrice   decimal.Decimal // price
	Quantity     decimal.Decimal
}

// OrderRequest는 거래소로 전달되는 정규화/양자화된 주문 요청입니다
type OrderRequest struct {
	Symbol        string
	Side          OrderSide
	Type          OrderType
	Quantity      decimal.Decimal
	Price         decimal.NullDecimal // 지정가 (Limit 계열)
	StopPrice     decimal.NullDecimal // 스탑 가격 (Stop 계열)
	TimeInForce   TimeInForce
	ClientOrderID string
}

// OrderResponse는 주문 응답을 표현합니다
type OrderResponse struct {
	OrderID          int64
	Symbol           string
	ClientOrderID    string
	Status           string
	Type             OrderType
	Side             OrderSide
	OrigQuantity     decimal.Decimal
	ExecutedQuantity decimal.Decimal
	QuoteQuantity    decimal.Decimal // 누적 체결 금액
	Fills            []Fill
	TransactTime     time.Time
}

// OpenOrder는 미체결 주문 목록의 한 항목입니다
type OpenOrder struct {
	OrderID   int64
	Symbol    string
	Type      OrderType
	Side      OrderSide
	Price     decimal.Decimal
	StopPrice decimal.Decimal
	OrigQty   decimal.Decimal
}
