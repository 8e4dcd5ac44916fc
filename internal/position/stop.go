package position

import (
	"github.com/shopspring/decimal"

	"github.com/assist-by/stopguard/internal/domain"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ValidateStopPct는 스탑 퍼센트가 0 초과 100 미만인지 확인합니다.
// 100% 이상이면 가격이 0 이하가 되어 주문을 걸 수 없습니다.
func ValidateStopPct(field string, pct decimal.Decimal) error {
	if !pct.IsPositive() || pct.GreaterThanOrEqual(hundred) {
		return Invalid(field, "SL %%는 0 초과 100 미만이어야 합니다: %s", pct)
	}
	return nil
}

// StopPrices는 보호 주문의 트리거 가격과 지정가입니다.
// 항상 Trigger >= Limit 입니다.
type StopPrices struct {
	Trigger decimal.Decimal
	Limit   decimal.Decimal
}

// ComputeStop은 기준 가격에서 두 퍼센트만큼 내린 가격을 가격 단위로 내림한 뒤
// 큰 쪽을 트리거, 작은 쪽을 지정가로 정합니다.
func ComputeStop(basis, triggerPct, limitPct, tick decimal.Decimal) (StopPrices, error) {
	if !basis.IsPositive() {
		return StopPrices{}, Invalid("basis", "기준 가격은 0보다 커야 합니다: %s", basis)
	}
	if err := ValidateStopPct("trigger_pct", triggerPct); err != nil {
		return StopPrices{}, err
	}
	if err := ValidateStopPct("limit_pct", limitPct); err != nil {
		return StopPrices{}, err
	}

	rawTrigger := domain.RoundDown(basis.Mul(one.Sub(triggerPct.Shift(-2))), tick)
	rawLimit := domain.RoundDown(basis.Mul(one.Sub(limitPct.Shift(-2))), tick)

	return StopPrices{
		Trigger: decimal.Max(rawTrigger, rawLimit),
		Limit:   decimal.Min(rawTrigger, rawLimit),
	}, nil
}

// Spec은 수량을 붙여 보호 주문 명세를 만듭니다
func (p StopPrices) Spec(quantity decimal.Decimal) domain.StopSpec {
	return domain.StopSpec{
		TriggerPrice: p.Trigger,
		LimitPrice:   p.Limit,
		Quantity:     quantity,
	}
}

// LimitShallowerThanTrigger는 지정가 %가 트리거 %보다 작은지 확인합니다.
// 이 경우 호출자가 사용자 확인을 받아야 합니다.
func LimitShallowerThanTrigger(triggerPct, limitPct decimal.Decimal) bool {
	return limitPct.LessThan(triggerPct)
}

// DefaultLimitPct는 트리거 %에 offset을 더한 기본 지정가 %를 반환합니다
func DefaultLimitPct(triggerPct, offset decimal.Decimal) decimal.Decimal {
	return triggerPct.Add(offset)
}
