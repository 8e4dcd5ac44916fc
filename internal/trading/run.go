package trading

import (
	"github.com/sirupsen/logrus"

	"github.com/assist-by/stopguard/internal/domain"
	"github.com/assist-by/stopguard/internal/notification"
)

// run은 흐름 하나의 진행 상태를 추적합니다
type run struct {
	o      *Orchestrator
	result *TradeResult
	state  FlowState
	bought bool
	log    logrus.FieldLogger
}

func (o *Orchestrator) newRun(flow Flow, symbol string) *run {
	return &run{
		o:      o,
		result: &TradeResult{Flow: flow, Symbol: symbol, States: []FlowState{StateIdle}},
		state:  StateIdle,
		log:    o.log.WithFields(logrus.Fields{"flow": flow, "symbol": symbol}),
	}
}

func (r *run) enter(state FlowState) {
	r.state = state
	r.result.States = append(r.result.States, state)
	r.log.WithField("state", state).Debug("상태 전이")
}

// fail은 현재 단계에서 흐름을 중단합니다. 이미 체결된 매수는 되돌리지 않습니다.
func (r *run) fail(err error) (*TradeResult, error) {
	fe := &FlowError{
		Flow:        r.result.Flow,
		State:       r.state,
		Symbol:      r.result.Symbol,
		Err:         err,
		Unprotected: r.bought && r.result.Flow == FlowBuyProtected,
	}
	r.result.States = append(r.result.States, StateFailed)
	r.o.metrics.Flow(string(r.result.Flow), "failed")

	entry := r.log.WithError(err).WithFields(logrus.Fields{
		"state": fe.State,
		"kind":  KindOf(err),
	})
	if fe.Unprotected {
		r.o.metrics.Unprotected()
		entry.WithField("quantity", r.result.Quantity.String()).Error("매수 체결 후 보호 주문 실패: 포지션이 보호되지 않았습니다")
	} else {
		entry.Warn("흐름 실패")
	}

	// 거래소에 아무것도 보내지 않은 입력 오류는 알림 대상이 아니다
	if fe.State != StateIdle {
		if nerr := r.o.notifier.SendError(fe); nerr != nil {
			r.log.WithError(nerr).Warn("에러 알림 전송 실패")
		}
	}
	return r.result, fe
}

func (r *run) skip() (*TradeResult, error) {
	r.result.Skipped = true
	r.log.Info("처리할 free 잔고가 없어 건너뜁니다")
	return r.finish("skipped")
}

func (r *run) done() (*TradeResult, error) {
	return r.finish("done")
}

func (r *run) finish(outcome string) (*TradeResult, error) {
	r.enter(StateDone)
	r.o.metrics.Flow(string(r.result.Flow), outcome)
	r.log.WithFields(logrus.Fields{
		"quantity":  r.result.Quantity.String(),
		"avg_price": r.result.AvgPrice.String(),
		"canceled":  r.result.Canceled,
		"skipped":   r.result.Skipped,
	}).Info("흐름 완료")

	if err := r.o.notifier.SendTradeResult(r.result.tradeInfo()); err != nil {
		r.log.WithError(err).Warn("거래 알림 전송 실패")
	}
	return r.result, nil
}

func (t *TradeResult) tradeInfo() notification.TradeInfo {
	info := notification.TradeInfo{
		Flow:     string(t.Flow),
		Symbol:   t.Symbol,
		Quantity: t.Quantity,
		AvgPrice: t.AvgPrice,
		Canceled: t.Canceled,
		Skipped:  t.Skipped,
		OrderIDs: make(map[string]int64),
	}
	if t.Buy != nil {
		info.Side = string(domain.Buy)
		info.OrderIDs["buy"] = t.Buy.OrderID
	}
	if t.Sell != nil {
		info.Side = string(domain.Sell)
		info.OrderIDs["sell"] = t.Sell.OrderID
	}
	if t.Protective != nil {
		info.StopPrice = t.Protective.Spec.TriggerPrice
		info.LimitPrice = t.Protective.Spec.LimitPrice
		info.OrderIDs["sl"] = t.Protective.OrderID
	}
	return info
}
