package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RoundDown은 value를 increment의 배수 중 value 이하인 가장 큰 값으로 내립니다.
// increment <= 0이면 제약이 없는 것으로 보고 value를 그대로 반환합니다.
//
// 예: RoundDown(1.234, 0.01) == 1.23
func RoundDown(value, increment decimal.Decimal) decimal.Decimal {
	if increment.Sign() <= 0 {
		return value
	}

	// QuoRem은 0 방향으로 자르므로 음수 나머지는 한 단계 더 내린다
	q, r := value.QuoRem(increment, 0)
	if r.Sign() < 0 {
		q = q.Sub(decimal.NewFromInt(1))
	}
	return q.Mul(increment)
}

// FormatDecimal은 불필요한 뒤쪽 0 없이 값을 표시합니다 (예: 0.01000000 -> 0.01)
func FormatDecimal(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "" || s == "-0" {
		return "0"
	}
	return s
}
