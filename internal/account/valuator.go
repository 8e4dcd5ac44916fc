// Package account는 계정 잔고 조회와 quote 자산 기준 평가를 담당합니다.
package account

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/stopguard/internal/domain"
	"github.com/assist-by/stopguard/internal/exchange"
)

// MinFilterLength는 심볼 검색 필터가 적용되는 최소 입력 길이입니다
const MinFilterLength = 3

// Valuator는 잔고 조회와 총 평가액 계산을 제공합니다
type Valuator struct {
	exchange exchange.Exchange
	quote    string
	log      logrus.FieldLogger
}

// NewValuator는 새로운 Valuator를 생성합니다
func NewValuator(ex exchange.Exchange, quote string, log logrus.FieldLogger) *Valuator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Valuator{
		exchange: ex,
		quote:    strings.ToUpper(quote),
		log:      log,
	}
}

// Quote는 평가 기준 자산을 반환합니다
func (v *Valuator) Quote() string {
	return v.quote
}

// FreeBalance는 자산의 사용 가능 잔고를 반환합니다.
// 표시용 값이므로 조회 실패 시 에러 대신 0을 반환합니다.
func (v *Valuator) FreeBalance(ctx context.Context, asset string) decimal.Decimal {
	b, err := v.exchange.GetAssetBalance(ctx, asset)
	if err != nil {
		v.log.WithError(err).WithField("asset", asset).Warn("잔고 조회 실패")
		return decimal.Zero
	}
	return b.Free
}

// EstimatedTotal은 계정 전체를 quote 자산 기준으로 평가합니다
func (v *Valuator) EstimatedTotal(ctx context.Context) (decimal.Decimal, error) {
	snapshot, err := v.exchange.GetAccount(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("계정 조회 실패: %w", err)
	}
	tickers, err := v.exchange.GetTickerPrices(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("티커 조회 실패: %w", err)
	}
	return TotalValue(snapshot, domain.NewPriceIndex(tickers), v.quote), nil
}

// TotalValue는 free+locked가 양수인 자산을 quote 자산으로 환산해 더합니다.
// <asset><quote> 가격이 없는 자산은 건너뜁니다 (근사치).
func TotalValue(snapshot *domain.AccountSnapshot, index domain.PriceIndex, quote string) decimal.Decimal {
	total := decimal.Zero
	if snapshot == nil {
		return total
	}
	for asset, b := range snapshot.Balances {
		amount := b.Total()
		if !amount.IsPositive() {
			continue
		}
		if asset == quote {
			total = total.Add(amount)
			continue
		}
		price, ok := index[domain.PairSymbol(asset, quote)]
		if !ok {
			continue
		}
		total = total.Add(amount.Mul(price))
	}
	return total
}

// QuoteSymbols는 quote 자산으로 끝나는 모든 심볼을 정렬해 반환합니다
func (v *Valuator) QuoteSymbols(ctx context.Context) ([]string, error) {
	tickers, err := v.exchange.GetTickerPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("티커 조회 실패: %w", err)
	}

	symbols := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if strings.HasSuffix(t.Symbol, v.quote) {
			symbols = append(symbols, t.Symbol)
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// FilterSymbols는 text를 포함하는 심볼만 남깁니다.
// text가 MinFilterLength보다 짧으면 목록을 그대로 반환합니다.
func FilterSymbols(symbols []string, text string) []string {
	text = domain.NormalizeSymbol(text)
	if len(text) < MinFilterLength {
		return symbols
	}

	var filtered []string
	for _, s := range symbols {
		if strings.Contains(s, text) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
