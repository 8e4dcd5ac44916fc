// Package metrics는 거래 흐름과 주문에 대한 Prometheus 지표를 정의합니다.
//
//   - stopguard_flows_total{flow,result}       흐름 실행 결과 (done|failed|skipped)
//   - stopguard_orders_total{side,type}        거래소에 접수된 주문
//   - stopguard_protective_canceled_total      취소된 보호 주문
//   - stopguard_cancel_failures_total          보호 주문 취소 실패
//   - stopguard_unprotected_positions_total    매수 후 보호 주문을 걸지 못한 경우
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics는 지표 모음입니다. nil Metrics의 메서드는 아무것도 하지 않습니다.
type Metrics struct {
	Flows               *prometheus.CounterVec
	Orders              *prometheus.CounterVec
	ProtectiveCanceled  prometheus.Counter
	CancelFailures      prometheus.Counter
	UnprotectedPosition prometheus.Counter
}

// New는 지표를 생성하고 reg에 등록합니다
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Flows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stopguard_flows_total",
				Help: "Trade flows by result",
			},
			[]string{"flow", "result"},
		),
		Orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stopguard_orders_total",
				Help: "Orders accepted by the exchange",
			},
			[]string{"side", "type"},
		),
		ProtectiveCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stopguard_protective_canceled_total",
			Help: "Protective orders canceled",
		}),
		CancelFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stopguard_cancel_failures_total",
			Help: "Protective order cancellations that failed",
		}),
		UnprotectedPosition: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stopguard_unprotected_positions_total",
			Help: "Buys that executed without a protective order in place",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Flows, m.Orders, m.ProtectiveCanceled, m.CancelFailures, m.UnprotectedPosition)
	}
	return m
}

// Flow는 흐름 결과를 기록합니다
func (m *Metrics) Flow(flow, result string) {
	if m == nil {
		return
	}
	m.Flows.WithLabelValues(flow, result).Inc()
}

// Order는 접수된 주문을 기록합니다
func (m *Metrics) Order(side, typ string) {
	if m == nil {
		return
	}
	m.Orders.WithLabelValues(side, typ).Inc()
}

// Canceled는 취소된 보호 주문 수를 더합니다
func (m *Metrics) Canceled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ProtectiveCanceled.Add(float64(n))
}

// CancelFailed는 취소 실패를 기록합니다
func (m *Metrics) CancelFailed() {
	if m == nil {
		return
	}
	m.CancelFailures.Inc()
}

// Unprotected는 보호되지 않은 포지션 발생을 기록합니다
func (m *Metrics) Unprotected() {
	if m == nil {
		return
	}
	m.UnprotectedPosition.Inc()
}

// Handler는 g의 지표를 노출하는 HTTP 핸들러를 반환합니다
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
