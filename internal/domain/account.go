package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Balance는 자산 하나의 잔고입니다
type Balance struct {
	Asset  string          `json:"asset"`
	Free   decimal.Decimal `json:"free"`   // 사용 가능한 잔고
	Locked decimal.Decimal `json:"locked"` // 주문 등에 잠긴 잔고
}

// Total은 free + locked를 반환합니다
func (b Balance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

// AccountSnapshot은 조회 시점의 자산별 잔고입니다
type AccountSnapshot struct {
	Balances map[string]Balance
}

// Balance는 자산의 잔고를 반환합니다. 없는 자산은 0 잔고입니다.
func (s *AccountSnapshot) Balance(asset string) Balance {
	if s == nil {
		return Balance{Asset: asset}
	}
	if b, ok := s.Balances[asset]; ok {
		return b
	}
	return Balance{Asset: asset}
}

// TickerPrice는 심볼의 최근 체결가입니다
type TickerPrice struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// PriceIndex는 심볼 -> 최근 체결가 맵입니다
type PriceIndex map[string]decimal.Decimal

// NewPriceIndex는 티커 목록으로 PriceIndex를 만듭니다
func NewPriceIndex(tickers []TickerPrice) PriceIndex {
	index := make(PriceIndex, len(tickers))
	for _, t := range tickers {
		index[t.Symbol] = t.Price
	}
	return index
}

// PairSymbol은 base/quote 자산으로 거래쌍 심볼을 만듭니다 (예: BTC + USDT -> BTCUSDT)
func PairSymbol(base, quote string) string {
	return strings.ToUpper(base) + strings.ToUpper(quote)
}

// NormalizeSymbol은 입력 심볼의 공백을 제거하고 대문자로 바꿉니다
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
