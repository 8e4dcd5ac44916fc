// Package display는 화면 표시용 읽기 전용 스냅샷과 이를 갱신하는 주기 작업을 제공합니다.
// 여기의 작업은 거래 흐름의 상태를 읽거나 바꾸지 않습니다.
package display

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot은 한 시점의 표시 값입니다
type Snapshot struct {
	Quote          string
	FreeQuote      decimal.Decimal
	TotalValue     decimal.Decimal
	Symbol         string
	LivePrice      decimal.Decimal
	BalanceUpdated time.Time
	PriceUpdated   time.Time
	LastError      string
}

// Store는 Snapshot을 동시 접근에 안전하게 보관합니다
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStore는 새로운 Store를 생성합니다
func NewStore(quote, symbol string) *Store {
	return &Store{snap: Snapshot{Quote: quote, Symbol: symbol}}
}

// Snapshot은 현재 값의 복사본을 반환합니다
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Store) setBalance(free, total decimal.Decimal, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.FreeQuote = free
	s.snap.TotalValue = total
	s.snap.BalanceUpdated = at
}

func (s *Store) setPrice(price decimal.Decimal, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.LivePrice = price
	s.snap.PriceUpdated = at
}

func (s *Store) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.snap.LastError = ""
		return
	}
	s.snap.LastError = err.Error()
}

// AccountReader는 잔고 표시 값을 제공합니다
type AccountReader interface {
	FreeQuoteBalance(ctx context.Context) decimal.Decimal
	EstimatedTotalValue(ctx context.Context) (decimal.Decimal, error)
}

// PriceReader는 현재가 표시 값을 제공합니다
type PriceReader interface {
	LivePrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// BalanceTask는 free 잔고와 총 평가액을 갱신합니다
type BalanceTask struct {
	Store  *Store
	Reader AccountReader
}

func (t *BalanceTask) Name() string { return "balance_refresh" }

func (t *BalanceTask) Execute(ctx context.Context) error {
	free := t.Reader.FreeQuoteBalance(ctx)
	total, err := t.Reader.EstimatedTotalValue(ctx)
	if err != nil {
		t.Store.setError(err)
		return err
	}
	t.Store.setBalance(free, total, time.Now())
	t.Store.setError(nil)
	return nil
}

// PriceTask는 선택된 심볼의 현재가를 갱신합니다
type PriceTask struct {
	Store  *Store
	Reader PriceReader
}

func (t *PriceTask) Name() string { return "price_refresh" }

func (t *PriceTask) Execute(ctx context.Context) error {
	symbol := t.Store.Snapshot().Symbol
	if symbol == "" {
		return nil
	}
	price, err := t.Reader.LivePrice(ctx, symbol)
	if err != nil {
		t.Store.setError(err)
		return err
	}
	t.Store.setPrice(price, time.Now())
	return nil
}
