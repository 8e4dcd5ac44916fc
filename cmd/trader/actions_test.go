package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/stopguard/internal/domain"
	"github.com/assist-by/stopguard/internal/position"
	"github.com/assist-by/stopguard/internal/trading"
)

var defaults = stopDefaults{
	triggerPct:     decimal.NewFromInt(1),
	limitOffsetPct: decimal.RequireFromString("0.1"),
}

func TestBuildCommand(t *testing.T) {
	cmd, err := buildCommand(cliOptions{action: "buy", symbol: " btcusdt ", pct: "10"}, defaults)
	require.NoError(t, err)
	buy := cmd.(trading.BuyRequest)
	assert.Equal(t, "BTCUSDT", buy.Symbol)
	assert.True(t, buy.Pct.Equal(decimal.NewFromInt(10)))

	cmd, err = buildCommand(cliOptions{action: "buysl", symbol: "BTCUSDT", pct: "10"}, defaults)
	require.NoError(t, err)
	buysl := cmd.(trading.BuyWithProtectionRequest)
	assert.True(t, buysl.TriggerPct.Equal(decimal.NewFromInt(1)))
	assert.True(t, buysl.LimitPct.Equal(decimal.RequireFromString("1.1")))

	cmd, err = buildCommand(cliOptions{action: "protect", symbol: "BTCUSDT", trigger: "2", limit: "2.5"}, defaults)
	require.NoError(t, err)
	protect := cmd.(trading.ProtectRequest)
	assert.True(t, protect.TriggerPct.Equal(decimal.NewFromInt(2)))
	assert.True(t, protect.LimitPct.Equal(decimal.RequireFromString("2.5")))

	cmd, err = buildCommand(cliOptions{action: "protect", symbol: "BTCUSDT", trigger: "2"}, defaults)
	require.NoError(t, err)
	assert.True(t, cmd.(trading.ProtectRequest).LimitPct.Equal(decimal.RequireFromString("2.1")))

	cmd, err = buildCommand(cliOptions{action: "sell", symbol: "ethusdt"}, defaults)
	require.NoError(t, err)
	assert.Equal(t, trading.LiquidateRequest{Symbol: "ETHUSDT"}, cmd)

	cmd, err = buildCommand(cliOptions{action: "cancel-all"}, defaults)
	require.NoError(t, err)
	assert.Equal(t, trading.CancelProtectiveRequest{All: true}, cmd)
}

func TestBuildCommand_Errors(t *testing.T) {
	_, err := buildCommand(cliOptions{action: "buy", symbol: "BTCUSDT", pct: "ten"}, defaults)
	assert.ErrorIs(t, err, position.ErrValidation)

	_, err = buildCommand(cliOptions{action: "protect", symbol: "BTCUSDT", trigger: "x"}, defaults)
	assert.ErrorIs(t, err, position.ErrValidation)

	_, err = buildCommand(cliOptions{action: "moon"}, defaults)
	assert.Error(t, err)
}

func TestConfirmShallowLimit(t *testing.T) {
	one, half := decimal.NewFromInt(1), decimal.RequireFromString("0.5")
	var out bytes.Buffer

	assert.True(t, confirmShallowLimit(one, decimal.RequireFromString("1.2"), false, strings.NewReader(""), &out))
	assert.Empty(t, out.String())

	assert.True(t, confirmShallowLimit(one, half, true, strings.NewReader(""), &out))
	assert.True(t, confirmShallowLimit(one, half, false, strings.NewReader("y\n"), &out))
	assert.False(t, confirmShallowLimit(one, half, false, strings.NewReader("\n"), &out))
	assert.Contains(t, out.String(), "[y/N]")
	assert.Contains(t, out.String(), "트리거는 -0.5%, 지정가는 -1% 가격")
}

func TestPrintResult(t *testing.T) {
	var out bytes.Buffer
	printResult(&out, &trading.TradeResult{
		Flow:     trading.FlowBuyProtected,
		Symbol:   "BTCUSDT",
		States:   []trading.FlowState{trading.StateIdle, trading.StateDone},
		Buy:      &domain.OrderResponse{OrderID: 7, ExecutedQuantity: decimal.RequireFromString("1.00000")},
		AvgPrice: decimal.NewFromInt(101),
		Protective: &position.OrderHandle{OrderID: 8, Spec: domain.StopSpec{
			TriggerPrice: decimal.RequireFromString("99.99"),
			LimitPrice:   decimal.RequireFromString("99.78"),
			Quantity:     decimal.RequireFromString("0.999"),
		}},
	})

	s := out.String()
	assert.Contains(t, s, "BTCUSDT")
	assert.Contains(t, s, "매수 #7 체결수량 1\n")
	assert.Contains(t, s, "평균가 101")
	assert.Contains(t, s, "보호 주문 #8 수량 0.999 트리거 99.99 리밋 99.78")

	out.Reset()
	printResult(&out, nil)
	assert.Empty(t, out.String())
}
