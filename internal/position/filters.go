package position

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/stopguard/internal/domain"
	"github.com/assist-by/stopguard/internal/exchange"
)

// 거래소가 필터를 보내지 않았을 때 사용하는 기본값
var (
	DefaultPriceIncrement    = decimal.RequireFromString("0.01")
	DefaultQuantityIncrement = decimal.RequireFromString("0.00000001")
	DefaultMinNotional       = decimal.Zero
)

// SymbolRules는 심볼 메타데이터와 기본값이 적용된 필터입니다
type SymbolRules struct {
	Info    domain.SymbolInfo
	Filters domain.ExchangeFilters
}

// FilterResolver는 심볼별 거래 제약을 조회하고 프로세스 수명 동안 캐시합니다
type FilterResolver struct {
	exchange exchange.Exchange
	log      logrus.FieldLogger

	mu    sync.Mutex
	cache map[string]SymbolRules
}

// NewFilterResolver는 새로운 FilterResolver를 생성합니다
func NewFilterResolver(ex exchange.Exchange, log logrus.FieldLogger) *FilterResolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FilterResolver{
		exchange: ex,
		log:      log,
		cache:    make(map[string]SymbolRules),
	}
}

// Resolve는 심볼의 필터를 반환합니다
func (r *FilterResolver) Resolve(ctx context.Context, symbol string) (domain.ExchangeFilters, error) {
	rules, err := r.Rules(ctx, symbol)
	if err != nil {
		return domain.ExchangeFilters{}, err
	}
	return rules.Filters, nil
}

// Rules는 심볼 메타데이터와 필터를 함께 반환합니다.
// 거래소 조회는 심볼당 한 번만 성공하면 이후 캐시를 사용합니다.
func (r *FilterResolver) Rules(ctx context.Context, symbol string) (SymbolRules, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rules, ok := r.cache[symbol]; ok {
		return rules, nil
	}

	info, err := r.exchange.GetSymbolInfo(ctx, symbol)
	if err != nil {
		return SymbolRules{}, fmt.Errorf("심볼 정보 조회 실패 (%s): %w", symbol, err)
	}
	if info == nil {
		return SymbolRules{}, exchange.NotFound(symbol)
	}

	rules := SymbolRules{
		Info: *info,
		Filters: domain.ExchangeFilters{
			PriceIncrement:    valueOr(info.TickSize, DefaultPriceIncrement),
			QuantityIncrement: valueOr(info.StepSize, DefaultQuantityIncrement),
			MinNotional:       valueOr(info.MinNotional, DefaultMinNotional),
		},
	}
	r.cache[symbol] = rules

	r.log.WithFields(logrus.Fields{
		"symbol":       symbol,
		"tick_size":    rules.Filters.PriceIncrement.String(),
		"step_size":    rules.Filters.QuantityIncrement.String(),
		"min_notional": rules.Filters.MinNotional.String(),
	}).Debug("심볼 필터 로드")

	return rules, nil
}

func valueOr(v decimal.NullDecimal, fallback decimal.Decimal) decimal.Decimal {
	if v.Valid {
		return v.Decimal
	}
	return fallback
}
