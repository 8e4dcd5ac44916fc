package trading

import (
	"github.com/shopspring/decimal"

	"github.com/assist-by/stopguard/internal/position"
)

// Command는 Orchestrator.Execute로 전달되는 사용자 명령입니다
type Command interface {
	// Validate는 거래소 호출 전에 입력값을 검증합니다
	Validate() error
}

// BuyRequest는 가용 quote 잔고의 Pct%만큼 시장가 매수합니다
type BuyRequest struct {
	Symbol string
	Pct    decimal.Decimal
}

func (r BuyRequest) Validate() error {
	if err := validateSymbol(r.Symbol); err != nil {
		return err
	}
	return validatePct(r.Pct)
}

// BuyWithProtectionRequest는 매수 후 체결가 기준 스탑 리밋 주문을 겁니다
type BuyWithProtectionRequest struct {
	Symbol     string
	Pct        decimal.Decimal
	TriggerPct decimal.Decimal
	LimitPct   decimal.Decimal
}

func (r BuyWithProtectionRequest) Validate() error {
	if err := validateSymbol(r.Symbol); err != nil {
		return err
	}
	if err := validatePct(r.Pct); err != nil {
		return err
	}
	return validateStopPcts(r.TriggerPct, r.LimitPct)
}

// ProtectRequest는 보유 중인 base 자산 free 잔고 전체에 스탑 리밋 주문을 겁니다
type ProtectRequest struct {
	Symbol     string
	TriggerPct decimal.Decimal
	LimitPct   decimal.Decimal
}

func (r ProtectRequest) Validate() error {
	if err := validateSymbol(r.Symbol); err != nil {
		return err
	}
	return validateStopPcts(r.TriggerPct, r.LimitPct)
}

// LiquidateRequest는 보호 주문을 취소한 뒤 base 자산 free 잔고를 전량 시장가 매도합니다
type LiquidateRequest struct {
	Symbol string
}

func (r LiquidateRequest) Validate() error {
	return validateSymbol(r.Symbol)
}

// CancelProtectiveRequest는 심볼(또는 All이면 계정 전체)의 보호 주문을 취소합니다
type CancelProtectiveRequest struct {
	Symbol string
	All    bool
}

func (r CancelProtectiveRequest) Validate() error {
	if r.All {
		return nil
	}
	return validateSymbol(r.Symbol)
}

func validateSymbol(symbol string) error {
	if symbol == "" {
		return position.Invalid("symbol", "심볼을 선택하세요")
	}
	return nil
}

func validatePct(pct decimal.Decimal) error {
	if !pct.IsPositive() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return position.Invalid("pct", "퍼센트는 0 초과 100 이하여야 합니다: %s", pct)
	}
	return nil
}

func validateStopPcts(triggerPct, limitPct decimal.Decimal) error {
	if err := position.ValidateStopPct("trigger_pct", triggerPct); err != nil {
		return err
	}
	return position.ValidateStopPct("limit_pct", limitPct)
}
