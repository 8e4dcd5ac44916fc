package display

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	free     decimal.Decimal
	total    decimal.Decimal
	totalErr error
	price    decimal.Decimal
	priceErr error
	symbols  []string
}

func (f *fakeReader) FreeQuoteBalance(context.Context) decimal.Decimal { return f.free }

func (f *fakeReader) EstimatedTotalValue(context.Context) (decimal.Decimal, error) {
	return f.total, f.totalErr
}

func (f *fakeReader) LivePrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	f.symbols = append(f.symbols, symbol)
	return f.price, f.priceErr
}

func TestBalanceTask(t *testing.T) {
	store := NewStore("USDT", "BTCUSDT")
	reader := &fakeReader{free: decimal.NewFromInt(50), total: decimal.NewFromInt(650)}
	task := &BalanceTask{Store: store, Reader: reader}

	require.NoError(t, task.Execute(context.Background()))
	snap := store.Snapshot()
	assert.True(t, snap.FreeQuote.Equal(decimal.NewFromInt(50)))
	assert.True(t, snap.TotalValue.Equal(decimal.NewFromInt(650)))
	assert.False(t, snap.BalanceUpdated.IsZero())

	reader.totalErr = errors.New("rate limited")
	assert.Error(t, task.Execute(context.Background()))
	snap = store.Snapshot()
	assert.Equal(t, "rate limited", snap.LastError)
	assert.True(t, snap.TotalValue.Equal(decimal.NewFromInt(650)), "last good value is kept")
}

func TestPriceTask(t *testing.T) {
	store := NewStore("USDT", "BTCUSDT")
	reader := &fakeReader{price: decimal.RequireFromString("60123.45")}
	task := &PriceTask{Store: store, Reader: reader}

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, []string{"BTCUSDT"}, reader.symbols)
	assert.True(t, store.Snapshot().LivePrice.Equal(decimal.RequireFromString("60123.45")))

	empty := NewStore("USDT", "")
	require.NoError(t, (&PriceTask{Store: empty, Reader: reader}).Execute(context.Background()))
	assert.Len(t, reader.symbols, 1)
}
