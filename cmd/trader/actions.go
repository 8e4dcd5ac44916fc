package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/assist-by/stopguard/internal/domain"
	"github.com/assist-by/stopguard/internal/position"
	"github.com/assist-by/stopguard/internal/trading"
)

// cliOptions는 명령줄 플래그 값입니다
type cliOptions struct {
	action  string
	symbol  string
	pct     string
	trigger string
	limit   string
	filter  string
	yes     bool
}

// stopDefaults는 스탑 퍼센트 기본값입니다
type stopDefaults struct {
	triggerPct     decimal.Decimal
	limitOffsetPct decimal.Decimal
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, position.Invalid(field, "숫자가 아닙니다: %q", value)
	}
	return d, nil
}

// stopPcts는 플래그 값이 비어 있으면 기본값으로 트리거/리밋 퍼센트를 정합니다
func stopPcts(opts cliOptions, def stopDefaults) (trigger, limit decimal.Decimal, err error) {
	trigger = def.triggerPct
	if opts.trigger != "" {
		if trigger, err = parseDecimal("trigger", opts.trigger); err != nil {
			return
		}
	}
	limit = position.DefaultLimitPct(trigger, def.limitOffsetPct)
	if opts.limit != "" {
		if limit, err = parseDecimal("limit", opts.limit); err != nil {
			return
		}
	}
	return trigger, limit, nil
}

// buildCommand는 주문 액션을 trading.Command로 변환합니다
func buildCommand(opts cliOptions, def stopDefaults) (trading.Command, error) {
	symbol := domain.NormalizeSymbol(opts.symbol)

	switch opts.action {
	case "buy":
		pct, err := parseDecimal("pct", opts.pct)
		if err != nil {
			return nil, err
		}
		return trading.BuyRequest{Symbol: symbol, Pct: pct}, nil

	case "buysl":
		pct, err := parseDecimal("pct", opts.pct)
		if err != nil {
			return nil, err
		}
		trigger, limit, err := stopPcts(opts, def)
		if err != nil {
			return nil, err
		}
		return trading.BuyWithProtectionRequest{Symbol: symbol, Pct: pct, TriggerPct: trigger, LimitPct: limit}, nil

	case "protect":
		trigger, limit, err := stopPcts(opts, def)
		if err != nil {
			return nil, err
		}
		return trading.ProtectRequest{Symbol: symbol, TriggerPct: trigger, LimitPct: limit}, nil

	case "sell":
		return trading.LiquidateRequest{Symbol: symbol}, nil

	case "cancel":
		return trading.CancelProtectiveRequest{Symbol: symbol}, nil

	case "cancel-all":
		return trading.CancelProtectiveRequest{All: true}, nil
	}

	return nil, fmt.Errorf("알 수 없는 액션: %q", opts.action)
}

// stopPctsOf는 스탑 주문이 포함된 명령의 퍼센트를 반환합니다
func stopPctsOf(cmd trading.Command) (trigger, limit decimal.Decimal, ok bool) {
	switch c := cmd.(type) {
	case trading.BuyWithProtectionRequest:
		return c.TriggerPct, c.LimitPct, true
	case trading.ProtectRequest:
		return c.TriggerPct, c.LimitPct, true
	}
	return decimal.Zero, decimal.Zero, false
}

// confirmShallowLimit는 리밋 퍼센트가 트리거보다 얕을 때 사용자 확인을 받습니다.
// 가격 계산에서 높은 쪽이 트리거가 되므로 두 역할이 서로 바뀝니다.
func confirmShallowLimit(trigger, limit decimal.Decimal, assumeYes bool, in io.Reader, out io.Writer) bool {
	if !position.LimitShallowerThanTrigger(trigger, limit) {
		return true
	}
	if assumeYes {
		return true
	}

	l, t := domain.FormatDecimal(limit), domain.FormatDecimal(trigger)
	fmt.Fprintf(out, "리밋 %s%%가 트리거 %s%%보다 얕습니다. 두 값이 바뀌어 트리거는 -%s%%, 지정가는 -%s%% 가격에 걸립니다. 계속할까요? [y/N]: ",
		l, t, l, t)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// printResult는 흐름 결과를 사람이 읽을 수 있게 출력합니다
func printResult(w io.Writer, res *trading.TradeResult) {
	if res == nil {
		return
	}

	fmt.Fprintf(w, "[%s] %s\n", res.Flow, res.Symbol)
	states := make([]string, len(res.States))
	for i, s := range res.States {
		states[i] = string(s)
	}
	fmt.Fprintf(w, "  진행: %s\n", strings.Join(states, " → "))

	if res.Skipped {
		fmt.Fprintln(w, "  처리할 잔고가 없어 건너뛰었습니다")
	}
	if res.Buy != nil {
		fmt.Fprintf(w, "  매수 #%d 체결수량 %s\n", res.Buy.OrderID, domain.FormatDecimal(res.Buy.ExecutedQuantity))
	}
	if !res.AvgPrice.IsZero() {
		fmt.Fprintf(w, "  평균가 %s\n", domain.FormatDecimal(res.AvgPrice))
	}
	if res.Protective != nil {
		spec := res.Protective.Spec
		fmt.Fprintf(w, "  보호 주문 #%d 수량 %s 트리거 %s 리밋 %s\n",
			res.Protective.OrderID,
			domain.FormatDecimal(spec.Quantity),
			domain.FormatDecimal(spec.TriggerPrice),
			domain.FormatDecimal(spec.LimitPrice))
	}
	if res.Sell != nil {
		fmt.Fprintf(w, "  매도 #%d 체결수량 %s\n", res.Sell.OrderID, domain.FormatDecimal(res.Sell.ExecutedQuantity))
	}
	if res.Canceled > 0 {
		fmt.Fprintf(w, "  취소된 보호 주문 %d개\n", res.Canceled)
	}
}

func printPreview(w io.Writer, quote string, p *trading.Preview) {
	fmt.Fprintf(w, "%s 가용 %s %s\n", p.Symbol, quote, domain.FormatDecimal(p.Balance))
	fmt.Fprintf(w, "  사용 금액 %s %s\n", domain.FormatDecimal(p.Spend), quote)
	fmt.Fprintf(w, "  현재가 %s\n", domain.FormatDecimal(p.Price))
	fmt.Fprintf(w, "  예상 수량 %s %s\n", domain.FormatDecimal(p.Quantity), p.BaseAsset)
}

func printSymbols(w io.Writer, symbols []string) {
	sorted := append([]string(nil), symbols...)
	sort.Strings(sorted)
	for _, s := range sorted {
		fmt.Fprintln(w, s)
	}
	fmt.Fprintf(w, "총 %d개\n", len(sorted))
}
