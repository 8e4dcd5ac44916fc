package position

import (
	"github.com/shopspring/decimal"

	"github.com/assist-by/stopguard/internal/domain"
)

// SpendAmount는 잔고의 pct%에 해당하는 금액입니다
func SpendAmount(balance, pct decimal.Decimal) decimal.Decimal {
	return balance.Mul(pct).Shift(-2)
}

// SizeFromPercent는 가용 잔고의 pct%를 현재가로 나눈 수량을 수량 단위로 내림해 반환합니다
func SizeFromPercent(balance, pct, price, step decimal.Decimal) (decimal.Decimal, error) {
	if !pct.IsPositive() || pct.GreaterThan(hundred) {
		return decimal.Zero, Invalid("pct", "퍼센트는 0 초과 100 이하여야 합니다: %s", pct)
	}
	if !balance.IsPositive() {
		return decimal.Zero, Invalid("balance", "가용 잔고가 0입니다")
	}
	if !price.IsPositive() {
		return decimal.Zero, Invalid("price", "가격이 올바르지 않습니다: %s", price)
	}

	spend := SpendAmount(balance, pct)

	var qty decimal.Decimal
	if step.IsPositive() {
		// spend / (price·step) 의 정수 몫이 곧 단위 수입니다
		units, _ := spend.QuoRem(price.Mul(step), 0)
		qty = units.Mul(step)
	} else {
		raw, _ := spend.QuoRem(price, averagePrecision)
		qty = domain.RoundDown(raw, step)
	}

	if !qty.IsPositive() {
		return decimal.Zero, ErrZeroQuantity
	}
	return qty, nil
}
