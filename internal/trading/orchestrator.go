// Package trading은 사용자 명령을 거래소 호출 순서로 실행합니다.
package trading

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/stopguard/internal/account"
	"github.com/assist-by/stopguard/internal/domain"
	"github.com/assist-by/stopguard/internal/exchange"
	"github.com/assist-by/stopguard/internal/metrics"
	"github.com/assist-by/stopguard/internal/notification"
	"github.com/assist-by/stopguard/internal/position"
)

// PriceSource는 화면 표시용 실시간 가격 공급자입니다
type PriceSource interface {
	Price(symbol string) (decimal.Decimal, bool)
}

// Orchestrator는 매수, 매수+SL, 보유 잔고 SL, 전량 매도, SL 취소 흐름을 실행합니다.
// 같은 심볼의 흐름은 순서대로 실행되고 다른 심볼끼리는 서로 막지 않습니다.
type Orchestrator struct {
	exchange   exchange.Exchange
	notifier   notification.Notifier
	metrics    *metrics.Metrics
	log        logrus.FieldLogger
	quote      string
	prices     PriceSource
	filters    *position.FilterResolver
	protective *position.ProtectiveOrderManager
	valuator   *account.Valuator

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Option은 Orchestrator 생성 옵션을 정의합니다
type Option func(*Orchestrator)

// WithLogger는 로거를 설정합니다
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithMetrics는 지표 수집기를 설정합니다
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithQuoteAsset은 퍼센트 매수와 평가의 기준 자산을 설정합니다 (기본값 USDT)
func WithQuoteAsset(quote string) Option {
	return func(o *Orchestrator) {
		if quote != "" {
			o.quote = strings.ToUpper(quote)
		}
	}
}

// WithPriceSource는 LivePrice가 먼저 참고할 가격 공급자를 설정합니다
func WithPriceSource(p PriceSource) Option {
	return func(o *Orchestrator) {
		o.prices = p
	}
}

// NewOrchestrator는 새로운 Orchestrator를 생성합니다
func NewOrchestrator(ex exchange.Exchange, notifier notification.Notifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		exchange: ex,
		notifier: notifier,
		log:      logrus.StandardLogger(),
		quote:    "USDT",
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.notifier == nil {
		o.notifier = notification.Nop{}
	}

	o.filters = position.NewFilterResolver(ex, o.log)
	o.protective = position.NewProtectiveOrderManager(ex, o.filters, o.metrics, o.log)
	o.valuator = account.NewValuator(ex, o.quote, o.log)
	return o
}

// Filters는 공유 필터 조회기를 반환합니다
func (o *Orchestrator) Filters() *position.FilterResolver {
	return o.filters
}

// Valuator는 공유 잔고 평가기를 반환합니다
func (o *Orchestrator) Valuator() *account.Valuator {
	return o.valuator
}

// Execute는 명령 종류에 맞는 흐름을 실행합니다
func (o *Orchestrator) Execute(ctx context.Context, cmd Command) (*TradeResult, error) {
	switch c := cmd.(type) {
	case BuyRequest:
		return o.Buy(ctx, c)
	case BuyWithProtectionRequest:
		return o.BuyWithProtection(ctx, c)
	case ProtectRequest:
		return o.ProtectFreeBalance(ctx, c)
	case LiquidateRequest:
		return o.Liquidate(ctx, c)
	case CancelProtectiveRequest:
		return o.CancelProtective(ctx, c)
	default:
		return nil, position.Invalid("command", "알 수 없는 명령입니다: %T", cmd)
	}
}

// Buy는 quote 잔고의 Pct%로 시장가 매수합니다
func (o *Orchestrator) Buy(ctx context.Context, req BuyRequest) (*TradeResult, error) {
	req.Symbol = domain.NormalizeSymbol(req.Symbol)
	r := o.newRun(FlowBuy, req.Symbol)
	if err := req.Validate(); err != nil {
		return r.fail(err)
	}
	unlock := o.lock(req.Symbol)
	defer unlock()

	if err := o.marketBuy(ctx, r, req.Symbol, req.Pct); err != nil {
		return r.fail(err)
	}

	// 보호 주문이 없는 흐름이므로 평균가는 표시용이다
	if len(r.result.Buy.Fills) > 0 {
		r.enter(StateAggregating)
		avg, err := position.WeightedAverage(r.result.Buy.Fills)
		if err != nil {
			return r.fail(err)
		}
		r.result.AvgPrice = avg
	}
	return r.done()
}

// BuyWithProtection은 시장가 매수 후 가중 평균 체결가를 기준으로 스탑 리밋 매도 주문을 겁니다.
// 매수 이후 단계가 실패하면 매수를 되돌리지 않고 ErrUnprotectedPosition으로 보고합니다.
func (o *Orchestrator) BuyWithProtection(ctx context.Context, req BuyWithProtectionRequest) (*TradeResult, error) {
	req.Symbol = domain.NormalizeSymbol(req.Symbol)
	r := o.newRun(FlowBuyProtected, req.Symbol)
	if err := req.Validate(); err != nil {
		return r.fail(err)
	}
	unlock := o.lock(req.Symbol)
	defer unlock()

	if err := o.marketBuy(ctx, r, req.Symbol, req.Pct); err != nil {
		return r.fail(err)
	}

	r.enter(StateAggregating)
	avg, err := position.WeightedAverage(r.result.Buy.Fills)
	if err != nil {
		return r.fail(err)
	}
	r.result.AvgPrice = avg

	return o.protect(ctx, r, req.Symbol, avg, req.TriggerPct, req.LimitPct, true)
}

// ProtectFreeBalance는 새 매수 없이 base 자산의 free 잔고 전체에 현재가 기준 스탑 리밋 주문을 겁니다
func (o *Orchestrator) ProtectFreeBalance(ctx context.Context, req ProtectRequest) (*TradeResult, error) {
	req.Symbol = domain.NormalizeSymbol(req.Symbol)
	r := o.newRun(FlowProtect, req.Symbol)
	if err := req.Validate(); err != nil {
		return r.fail(err)
	}
	unlock := o.lock(req.Symbol)
	defer unlock()

	return o.protect(ctx, r, req.Symbol, decimal.Zero, req.TriggerPct, req.LimitPct, false)
}

// protect는 잔고 조회, 가격 계산, 보호 주문 접수를 수행합니다.
// afterBuy이면 basis는 평균 체결가이고, 아니면 잔고 조회 후 현재가를 basis로 사용합니다.
func (o *Orchestrator) protect(ctx context.Context, r *run, symbol string, basis, triggerPct, limitPct decimal.Decimal, afterBuy bool) (*TradeResult, error) {
	rules, err := o.filters.Rules(ctx, symbol)
	if err != nil {
		return r.fail(err)
	}

	var stop position.StopPrices
	if afterBuy {
		r.enter(StateComputingProtection)
		if stop, err = position.ComputeStop(basis, triggerPct, limitPct, rules.Filters.PriceIncrement); err != nil {
			return r.fail(err)
		}
	}

	r.enter(StateQueryingPostTradeBalance)
	qty, skipped, err := o.freeBaseQuantity(ctx, rules)
	if err != nil {
		return r.fail(err)
	}
	if skipped {
		if afterBuy {
			return r.fail(position.ErrZeroQuantity)
		}
		return r.skip()
	}
	r.result.Quantity = qty

	if !afterBuy {
		r.enter(StateComputingProtection)
		price, err := o.exchange.GetSymbolPrice(ctx, symbol)
		if err != nil {
			return r.fail(err)
		}
		if stop, err = position.ComputeStop(price, triggerPct, limitPct, rules.Filters.PriceIncrement); err != nil {
			return r.fail(err)
		}
	}

	r.enter(StateSubmittingProtective)
	handle, err := o.protective.PlaceProtective(ctx, symbol, stop.Spec(qty))
	if err != nil {
		return r.fail(err)
	}
	r.result.Protective = handle
	return r.done()
}

// Liquidate는 보호 주문을 먼저 취소한 뒤 base 자산 free 잔고를 전량 시장가 매도합니다.
// 미체결 주문 조회에 실패하면 매도하지 않습니다.
func (o *Orchestrator) Liquidate(ctx context.Context, req LiquidateRequest) (*TradeResult, error) {
	req.Symbol = domain.NormalizeSymbol(req.Symbol)
	r := o.newRun(FlowLiquidate, req.Symbol)
	if err := req.Validate(); err != nil {
		return r.fail(err)
	}
	unlock := o.lock(req.Symbol)
	defer unlock()

	r.enter(StateCancelProtective)
	canceled, err := o.protective.CancelProtective(ctx, req.Symbol)
	if err != nil {
		return r.fail(err)
	}
	r.result.Canceled = canceled

	r.enter(StateQueryingPostTradeBalance)
	rules, err := o.filters.Rules(ctx, req.Symbol)
	if err != nil {
		return r.fail(err)
	}
	qty, skipped, err := o.freeBaseQuantity(ctx, rules)
	if err != nil {
		return r.fail(err)
	}
	if skipped {
		return r.skip()
	}
	r.result.Quantity = qty

	r.enter(StateSubmittingSell)
	resp, err := o.placeMarket(ctx, req.Symbol, domain.Sell, qty)
	if err != nil {
		return r.fail(err)
	}
	r.result.Sell = resp
	if avg, err := position.WeightedAverage(resp.Fills); err == nil {
		r.result.AvgPrice = avg
	}
	return r.done()
}

// CancelProtective는 심볼 또는 계정 전체의 보호 주문을 취소합니다
func (o *Orchestrator) CancelProtective(ctx context.Context, req CancelProtectiveRequest) (*TradeResult, error) {
	req.Symbol = domain.NormalizeSymbol(req.Symbol)
	flow := FlowCancelProtective
	if req.All {
		flow = FlowCancelAll
		req.Symbol = ""
	}
	r := o.newRun(flow, req.Symbol)
	if err := req.Validate(); err != nil {
		return r.fail(err)
	}

	r.enter(StateCancelProtective)
	var (
		canceled int
		err      error
	)
	if req.All {
		canceled, err = o.protective.CancelAllProtective(ctx)
	} else {
		unlock := o.lock(req.Symbol)
		defer unlock()
		canceled, err = o.protective.CancelProtective(ctx, req.Symbol)
	}
	if err != nil {
		return r.fail(err)
	}
	r.result.Canceled = canceled
	return r.done()
}

// Preview는 주문 없이 퍼센트 매수 금액과 단위 조정된 수량을 계산합니다
func (o *Orchestrator) Preview(ctx context.Context, symbol string, pct decimal.Decimal) (*Preview, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if err := (BuyRequest{Symbol: symbol, Pct: pct}).Validate(); err != nil {
		return nil, err
	}
	if err := o.checkQuote(symbol); err != nil {
		return nil, err
	}

	rules, err := o.filters.Rules(ctx, symbol)
	if err != nil {
		return nil, err
	}
	balance, err := o.exchange.GetAssetBalance(ctx, o.quote)
	if err != nil {
		return nil, fmt.Errorf("%s 잔고 조회 실패: %w", o.quote, err)
	}
	price, err := o.exchange.GetSymbolPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}
	qty, err := position.SizeFromPercent(balance.Free, pct, price, rules.Filters.QuantityIncrement)
	if err != nil {
		return nil, err
	}

	return &Preview{
		Symbol:    symbol,
		BaseAsset: rules.Info.BaseAsset,
		Balance:   balance.Free,
		Spend:     position.SpendAmount(balance.Free, pct),
		Price:     price,
		Quantity:  qty,
	}, nil
}

// FreeQuoteBalance는 quote 자산의 free 잔고를 반환합니다 (실패 시 0)
func (o *Orchestrator) FreeQuoteBalance(ctx context.Context) decimal.Decimal {
	return o.valuator.FreeBalance(ctx, o.quote)
}

// EstimatedTotalValue는 계정 전체의 quote 자산 기준 평가액을 반환합니다
func (o *Orchestrator) EstimatedTotalValue(ctx context.Context) (decimal.Decimal, error) {
	return o.valuator.EstimatedTotal(ctx)
}

// LivePrice는 심볼의 현재가를 반환합니다. 실시간 가격 공급자가 있으면 먼저 사용합니다.
func (o *Orchestrator) LivePrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if o.prices != nil {
		if p, ok := o.prices.Price(symbol); ok {
			return p, nil
		}
	}
	return o.exchange.GetSymbolPrice(ctx, symbol)
}

// marketBuy는 Sizing, Submitting(Buy) 단계를 수행합니다
func (o *Orchestrator) marketBuy(ctx context.Context, r *run, symbol string, pct decimal.Decimal) error {
	if err := o.checkQuote(symbol); err != nil {
		return err
	}

	r.enter(StateSizing)
	rules, err := o.filters.Rules(ctx, symbol)
	if err != nil {
		return err
	}
	if rules.Info.QuoteAsset != "" && rules.Info.QuoteAsset != o.quote {
		return position.Invalid("symbol", "%s의 quote 자산은 %s입니다 (%s 마켓만 지원)", symbol, rules.Info.QuoteAsset, o.quote)
	}
	balance, err := o.exchange.GetAssetBalance(ctx, o.quote)
	if err != nil {
		return fmt.Errorf("%s 잔고 조회 실패: %w", o.quote, err)
	}
	price, err := o.exchange.GetSymbolPrice(ctx, symbol)
	if err != nil {
		return err
	}
	qty, err := position.SizeFromPercent(balance.Free, pct, price, rules.Filters.QuantityIncrement)
	if err != nil {
		return err
	}

	r.log.WithFields(logrus.Fields{
		"pct":      pct.String(),
		"spend":    position.SpendAmount(balance.Free, pct).StringFixed(2),
		"price":    price.String(),
		"quantity": qty.String(),
	}).Info("퍼센트 매수 수량 계산")

	r.enter(StateSubmittingBuy)
	resp, err := o.placeMarket(ctx, symbol, domain.Buy, qty)
	if err != nil {
		return err
	}
	r.result.Buy = resp
	r.result.Quantity = resp.ExecutedQuantity
	r.bought = true
	return nil
}

func (o *Orchestrator) placeMarket(ctx context.Context, symbol string, side domain.OrderSide, qty decimal.Decimal) (*domain.OrderResponse, error) {
	resp, err := o.exchange.PlaceOrder(ctx, domain.OrderRequest{
		Symbol:   symbol,
		Side:     side,
		Type:     domain.Market,
		Quantity: qty,
	})
	if err != nil {
		return nil, err
	}
	o.metrics.Order(string(side), string(domain.Market))
	o.log.WithFields(logrus.Fields{
		"symbol":   symbol,
		"side":     side,
		"order_id": resp.OrderID,
		"status":   resp.Status,
		"executed": resp.ExecutedQuantity.String(),
	}).Info("시장가 주문 체결")
	return resp, nil
}

// freeBaseQuantity는 base 자산 free 잔고를 수량 단위로 내림해 반환합니다.
// 잔고가 없으면 skipped가 true이고, 내림 결과가 0이면 ErrZeroQuantity입니다.
func (o *Orchestrator) freeBaseQuantity(ctx context.Context, rules position.SymbolRules) (qty decimal.Decimal, skipped bool, err error) {
	base := rules.Info.BaseAsset
	if base == "" {
		return decimal.Zero, false, fmt.Errorf("%s의 base 자산 정보가 없습니다", rules.Info.Symbol)
	}
	balance, err := o.exchange.GetAssetBalance(ctx, base)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%s 잔고 조회 실패: %w", base, err)
	}
	if !balance.Free.IsPositive() {
		return decimal.Zero, true, nil
	}
	qty = domain.RoundDown(balance.Free, rules.Filters.QuantityIncrement)
	if !qty.IsPositive() {
		return decimal.Zero, false, position.ErrZeroQuantity
	}
	return qty, false, nil
}

func (o *Orchestrator) checkQuote(symbol string) error {
	if !strings.HasSuffix(symbol, o.quote) || symbol == o.quote {
		return position.Invalid("symbol", "퍼센트 매수는 %s 마켓만 지원합니다: %s", o.quote, symbol)
	}
	return nil
}

// lock은 심볼별 뮤텍스를 잡고 해제 함수를 반환합니다
func (o *Orchestrator) lock(symbol string) func() {
	o.locksMu.Lock()
	mu, ok := o.locks[symbol]
	if !ok {
		mu = &sync.Mutex{}
		o.locks[symbol] = mu
	}
	o.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
