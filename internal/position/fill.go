package position

import (
	"github.com/shopspring/decimal"

	"github.com/assist-by/stopguard/internal/domain"
)

// averagePrecision는 가중 평균 몫의 소수 자릿수입니다.
// 이후 단계에서 가격 단위로 내림하므로 이보다 작은 자릿수는 결과에 영향이 없습니다.
const averagePrecision = 20

// WeightedAverage는 체결 목록의 수량 가중 평균가 Σ(price·qty)/Σ(qty)를 계산합니다.
// 가격 단위 조정은 하지 않습니다.
func WeightedAverage(fills []domain.Fill) (decimal.Decimal, error) {
	if len(fills) == 0 {
		return decimal.Zero, ErrNoFills
	}

	totalQty := decimal.Zero
	totalQuote := decimal.Zero
	for _, f := range fills {
		totalQty = totalQty.Add(f.Quantity)
		totalQuote = totalQuote.Add(f.Price.Mul(f.Quantity))
	}

	if totalQty.IsZero() {
		return decimal.Zero, ErrZeroFilledQuantity
	}

	q, _ := totalQuote.QuoRem(totalQty, averagePrecision)
	return q, nil
}
