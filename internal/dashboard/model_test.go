package dashboard

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/stopguard/internal/display"
)

type staticSource struct {
	snap display.Snapshot
}

func (s *staticSource) Snapshot() display.Snapshot { return s.snap }

func TestModel_TickRefreshesSnapshot(t *testing.T) {
	src := &staticSource{snap: display.Snapshot{Quote: "USDT", Symbol: "BTCUSDT"}}
	m := New(src, time.Second, nil)
	assert.Contains(t, m.View(), "대기 중")

	now := time.Now()
	src.snap.FreeQuote = decimal.NewFromInt(50)
	src.snap.TotalValue = decimal.NewFromInt(650)
	src.snap.BalanceUpdated = now
	src.snap.LivePrice = decimal.RequireFromString("60123.45000000")
	src.snap.PriceUpdated = now

	updated, cmd := m.Update(tickMsg(now))
	require.NotNil(t, cmd)

	view := updated.View()
	assert.Contains(t, view, "BTCUSDT")
	assert.Contains(t, view, "650.00")
	assert.Contains(t, view, "60123.45")
	assert.NotContains(t, view, "60123.45000000")
}

func TestModel_ShowsLastError(t *testing.T) {
	src := &staticSource{snap: display.Snapshot{Quote: "USDT", LastError: errors.New("rate limited").Error()}}
	m := New(src, time.Second, nil)
	assert.Contains(t, m.View(), "rate limited")
}

func TestModel_QuitCancelsContext(t *testing.T) {
	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	}
	for _, key := range keys {
		canceled := false
		m := New(&staticSource{}, time.Second, func() { canceled = true })

		updated, cmd := m.Update(key)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.True(t, canceled)
		assert.Empty(t, updated.View())
	}
}

func TestModel_IgnoresOtherKeys(t *testing.T) {
	m := New(&staticSource{}, 0, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Nil(t, cmd)
}
