package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundDown(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		increment string
		want      string
	}{
		{"소수 둘째 자리로 내림", "1.234", "0.01", "1.23"},
		{"이미 배수인 값", "99.00", "0.01", "99"},
		{"스텝보다 작은 값", "0.0009", "0.001", "0"},
		{"정수 스텝", "157", "10", "150"},
		{"사토시 단위", "0.123456789", "0.00000001", "0.12345678"},
		{"음수 값은 아래로", "-1.234", "0.01", "-1.24"},
		{"increment 0은 제약 없음", "1.23456", "0", "1.23456"},
		{"음수 increment도 제약 없음", "1.23456", "-0.1", "1.23456"},
		{"이진 부동소수점 오차 없음", "0.3", "0.1", "0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundDown(d(tt.value), d(tt.increment))
			assert.True(t, got.Equal(d(tt.want)), "RoundDown(%s, %s) = %s, want %s", tt.value, tt.increment, got, tt.want)
		})
	}
}

func TestRoundDown_Properties(t *testing.T) {
	values := []string{"0", "0.5", "1.999999", "12345.6789", "98.805", "0.00000001", "-3.333"}
	increments := []string{"0.01", "0.001", "0.5", "1", "0.00000001", "0.25"}

	for _, v := range values {
		for _, s := range increments {
			value, step := d(v), d(s)
			once := RoundDown(value, step)

			// 멱등성
			assert.True(t, RoundDown(once, step).Equal(once), "idempotent: %s/%s", v, s)
			// 결과는 입력 이하
			assert.True(t, once.LessThanOrEqual(value), "not above input: %s/%s -> %s", v, s, once)
			// 결과는 step의 배수
			assert.True(t, once.Mod(step).IsZero(), "multiple of step: %s/%s -> %s", v, s, once)
			// 한 step 이상 내려가지 않음
			assert.True(t, value.Sub(once).LessThan(step), "within one step: %s/%s -> %s", v, s, once)
		}
		assert.True(t, RoundDown(d(v), decimal.Zero).Equal(d(v)))
	}
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "0.01", FormatDecimal(d("0.01000000")))
	assert.Equal(t, "1", FormatDecimal(d("1.000")))
	assert.Equal(t, "0", FormatDecimal(d("0.0000")))
	assert.Equal(t, "120", FormatDecimal(d("120")))
	assert.Equal(t, "-2.5", FormatDecimal(d("-2.50")))
}

func TestOrderType_IsProtective(t *testing.T) {
	for _, typ := range []OrderType{StopLoss, StopLossLimit, TakeProfit, TakeProfitLimit} {
		assert.True(t, typ.IsProtective(), typ)
	}
	for _, typ := range []OrderType{Market, Limit, LimitMaker} {
		assert.False(t, typ.IsProtective(), typ)
	}
}

func TestPriceIndexAndSnapshot(t *testing.T) {
	index := NewPriceIndex([]TickerPrice{
		{Symbol: "BTCUSDT", Price: d("60000")},
		{Symbol: "ETHUSDT", Price: d("3000.5")},
	})
	assert.True(t, index["ETHUSDT"].Equal(d("3000.5")))
	assert.Equal(t, "BTCUSDT", PairSymbol("btc", "usdt"))
	assert.Equal(t, "BNBUSDT", NormalizeSymbol("  bnbusdt "))

	snap := &AccountSnapshot{Balances: map[string]Balance{
		"BTC": {Asset: "BTC", Free: d("0.01"), Locked: d("0.002")},
	}}
	assert.True(t, snap.Balance("BTC").Total().Equal(d("0.012")))
	assert.True(t, snap.Balance("XRP").Total().IsZero())
}
