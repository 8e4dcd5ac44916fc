// Package exchangetest는 테스트용 인메모리 거래소를 제공합니다.
package exchangetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/assist-by/stopguard/internal/domain"
	"github.com/assist-by/stopguard/internal/exchange"
)

// Fake는 exchange.Exchange를 메모리에서 흉내 냅니다.
// 각 메서드 이름을 키로 Errors에 에러를 넣으면 해당 호출이 실패합니다.
type Fake struct {
	mu sync.Mutex

	Symbols  map[string]*domain.SymbolInfo
	Prices   map[string]decimal.Decimal
	Balances map[string]domain.Balance
	Orders   []domain.OpenOrder

	// MarketFills는 다음 시장가 주문의 체결 목록입니다. 비어 있으면 현재가로 전량 체결됩니다.
	MarketFills []domain.Fill
	// BaseCredit은 시장가 매수 후 base 자산 free 잔고에 더할 수량입니다 (수수료 차감 흉내).
	// 비어 있으면 체결 수량 전부를 더합니다.
	BaseCredit *decimal.Decimal

	Errors       map[string]error
	CancelErrors map[int64]error

	Calls    []string
	Placed   []domain.OrderRequest
	Canceled []int64

	nextID int64
}

var _ exchange.Exchange = (*Fake)(nil)

// New는 빈 Fake를 생성합니다
func New() *Fake {
	return &Fake{
		Symbols:      make(map[string]*domain.SymbolInfo),
		Prices:       make(map[string]decimal.Decimal),
		Balances:     make(map[string]domain.Balance),
		Errors:       make(map[string]error),
		CancelErrors: make(map[int64]error),
		nextID:       1000,
	}
}

// AddSymbol은 심볼 메타데이터와 가격을 등록합니다
func (f *Fake) AddSymbol(symbol, base, quote, tick, step, minNotional, price string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	info := &domain.SymbolInfo{Symbol: symbol, BaseAsset: base, QuoteAsset: quote}
	if tick != "" {
		info.TickSize = decimal.NewNullDecimal(decimal.RequireFromString(tick))
	}
	if step != "" {
		info.StepSize = decimal.NewNullDecimal(decimal.RequireFromString(step))
	}
	if minNotional != "" {
		info.MinNotional = decimal.NewNullDecimal(decimal.RequireFromString(minNotional))
	}
	f.Symbols[symbol] = info
	if price != "" {
		f.Prices[symbol] = decimal.RequireFromString(price)
	}
	return f
}

// SetBalance는 자산 잔고를 설정합니다
func (f *Fake) SetBalance(asset, free, locked string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Balances[asset] = domain.Balance{
		Asset:  asset,
		Free:   decimal.RequireFromString(free),
		Locked: decimal.RequireFromString(locked),
	}
	return f
}

// AddOpenOrder는 미체결 주문을 등록합니다
func (f *Fake) AddOpenOrder(id int64, symbol string, typ domain.OrderType) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Orders = append(f.Orders, domain.OpenOrder{OrderID: id, Symbol: symbol, Type: typ, Side: domain.Sell})
	return f
}

// CallCount는 메서드 호출 횟수를 반환합니다
func (f *Fake) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == method {
			n++
		}
	}
	return n
}

// OpenOrderIDs는 남아 있는 미체결 주문 ID를 반환합니다
func (f *Fake) OpenOrderIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.Orders))
	for _, o := range f.Orders {
		ids = append(ids, o.OrderID)
	}
	return ids
}

func (f *Fake) record(method string) error {
	f.Calls = append(f.Calls, method)
	return f.Errors[method]
}

func (f *Fake) GetTickerPrices(ctx context.Context) ([]domain.TickerPrice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetTickerPrices"); err != nil {
		return nil, err
	}
	tickers := make([]domain.TickerPrice, 0, len(f.Prices))
	for symbol, price := range f.Prices {
		tickers = append(tickers, domain.TickerPrice{Symbol: symbol, Price: price})
	}
	return tickers, nil
}

func (f *Fake) GetSymbolPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetSymbolPrice"); err != nil {
		return decimal.Zero, err
	}
	price, ok := f.Prices[symbol]
	if !ok {
		return decimal.Zero, exchange.NotFound(symbol)
	}
	return price, nil
}

func (f *Fake) GetSymbolInfo(ctx context.Context, symbol string) (*domain.SymbolInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetSymbolInfo"); err != nil {
		return nil, err
	}
	info, ok := f.Symbols[symbol]
	if !ok {
		return nil, exchange.NotFound(symbol)
	}
	copied := *info
	return &copied, nil
}

func (f *Fake) GetAccount(ctx context.Context) (*domain.AccountSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetAccount"); err != nil {
		return nil, err
	}
	snapshot := &domain.AccountSnapshot{Balances: make(map[string]domain.Balance, len(f.Balances))}
	for asset, b := range f.Balances {
		snapshot.Balances[asset] = b
	}
	return snapshot, nil
}

func (f *Fake) GetAssetBalance(ctx context.Context, asset string) (domain.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetAssetBalance"); err != nil {
		return domain.Balance{Asset: asset}, err
	}
	if b, ok := f.Balances[asset]; ok {
		return b, nil
	}
	return domain.Balance{Asset: asset}, nil
}

func (f *Fake) GetOpenOrders(ctx context.Context, symbol string) ([]domain.OpenOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetOpenOrders"); err != nil {
		return nil, err
	}
	var orders []domain.OpenOrder
	for _, o := range f.Orders {
		if symbol == "" || o.Symbol == symbol {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (f *Fake) PlaceOrder(ctx context.Context, order domain.OrderRequest) (*domain.OrderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("PlaceOrder"); err != nil {
		return nil, err
	}
	if err := f.record("PlaceOrder:" + string(order.Type)); err != nil {
		return nil, err
	}
	f.Placed = append(f.Placed, order)
	f.nextID++

	resp := &domain.OrderResponse{
		OrderID:       f.nextID,
		Symbol:        order.Symbol,
		ClientOrderID: order.ClientOrderID,
		Type:          order.Type,
		Side:          order.Side,
		OrigQuantity:  order.Quantity,
		Status:        "NEW",
	}

	if order.Type != domain.Market {
		f.Orders = append(f.Orders, domain.OpenOrder{
			OrderID:   f.nextID,
			Symbol:    order.Symbol,
			Type:      order.Type,
			Side:      order.Side,
			Price:     order.Price.Decimal,
			StopPrice: order.StopPrice.Decimal,
			OrigQty:   order.Quantity,
		})
		return resp, nil
	}

	info, ok := f.Symbols[order.Symbol]
	if !ok {
		return nil, exchange.NotFound(order.Symbol)
	}

	fills := f.MarketFills
	if fills == nil {
		fills = []domain.Fill{{Price: f.Prices[order.Symbol], Quantity: order.Quantity}}
	}
	f.MarketFills = nil

	executed := decimal.Zero
	quote := decimal.Zero
	for _, fill := range fills {
		executed = executed.Add(fill.Quantity)
		quote = quote.Add(fill.Price.Mul(fill.Quantity))
	}

	base := f.Balances[info.BaseAsset]
	base.Asset = info.BaseAsset
	quoteBal := f.Balances[info.QuoteAsset]
	quoteBal.Asset = info.QuoteAsset
	switch order.Side {
	case domain.Buy:
		credit := executed
		if f.BaseCredit != nil {
			credit = *f.BaseCredit
		}
		base.Free = base.Free.Add(credit)
		quoteBal.Free = quoteBal.Free.Sub(quote)
	case domain.Sell:
		if base.Free.LessThan(order.Quantity) {
			return nil, &exchange.APIError{HTTPStatus: 400, Code: -2010, Message: "Account has insufficient balance for requested action."}
		}
		base.Free = base.Free.Sub(order.Quantity)
		quoteBal.Free = quoteBal.Free.Add(quote)
	}
	f.Balances[info.BaseAsset] = base
	f.Balances[info.QuoteAsset] = quoteBal

	resp.Status = "FILLED"
	resp.Fills = fills
	resp.ExecutedQuantity = executed
	resp.QuoteQuantity = quote
	return resp, nil
}

func (f *Fake) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CancelOrder"); err != nil {
		return err
	}
	if err := f.CancelErrors[orderID]; err != nil {
		return err
	}
	for i, o := range f.Orders {
		if o.OrderID == orderID && o.Symbol == symbol {
			f.Orders = append(f.Orders[:i], f.Orders[i+1:]...)
			f.Canceled = append(f.Canceled, orderID)
			return nil
		}
	}
	return &exchange.APIError{HTTPStatus: 400, Code: -2011, Message: fmt.Sprintf("Unknown order sent: %d", orderID)}
}

func (f *Fake) SyncTime(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("SyncTime")
}
