package position

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/stopguard/internal/domain"
	"github.com/assist-by/stopguard/internal/exchange"
	"github.com/assist-by/stopguard/internal/metrics"
)

// OrderHandle은 접수된 보호 주문의 식별 정보입니다
type OrderHandle struct {
	OrderID       int64
	ClientOrderID string
	Status        string
	Spec          domain.StopSpec
}

// ProtectiveOrderManager는 심볼의 보호 주문을 취소하거나 새로 겁니다.
// 취소와 설치의 순서는 호출자가 정합니다.
type ProtectiveOrderManager struct {
	exchange exchange.Exchange
	filters  *FilterResolver
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

// NewProtectiveOrderManager는 새로운 보호 주문 매니저를 생성합니다.
// filters가 있으면 최소 주문 가치 미달을 미리 경고합니다.
func NewProtectiveOrderManager(ex exchange.Exchange, filters *FilterResolver, m *metrics.Metrics, log logrus.FieldLogger) *ProtectiveOrderManager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ProtectiveOrderManager{
		exchange: ex,
		filters:  filters,
		metrics:  m,
		log:      log,
	}
}

// CancelProtective는 심볼의 미체결 손절/익절 주문을 모두 취소하고 취소한 개수를 반환합니다.
// 개별 취소 실패는 기록만 하고 나머지 취소를 계속합니다.
func (m *ProtectiveOrderManager) CancelProtective(ctx context.Context, symbol string) (int, error) {
	openOrders, err := m.exchange.GetOpenOrders(ctx, symbol)
	if err != nil {
		return 0, NewPositionError(symbol, "list_open_orders", err)
	}
	return m.cancelOrders(ctx, openOrders), nil
}

// CancelAllProtective는 계정 전체의 손절/익절 주문을 취소합니다
func (m *ProtectiveOrderManager) CancelAllProtective(ctx context.Context) (int, error) {
	openOrders, err := m.exchange.GetOpenOrders(ctx, "")
	if err != nil {
		return 0, NewPositionError("", "list_open_orders", err)
	}
	return m.cancelOrders(ctx, openOrders), nil
}

func (m *ProtectiveOrderManager) cancelOrders(ctx context.Context, orders []domain.OpenOrder) int {
	canceled := 0
	for _, order := range orders {
		if !order.Type.IsProtective() {
			continue
		}

		entry := m.log.WithFields(logrus.Fields{
			"symbol":   order.Symbol,
			"order_id": order.OrderID,
			"type":     order.Type,
		})
		if err := m.exchange.CancelOrder(ctx, order.Symbol, order.OrderID); err != nil {
			entry.WithError(err).Warn("보호 주문 취소 실패")
			m.metrics.CancelFailed()
			continue
		}
		entry.Info("보호 주문 취소 성공")
		canceled++
	}
	m.metrics.Canceled(canceled)
	return canceled
}

// PlaceProtective는 spec대로 매도 스탑 리밋 주문(GTC)을 겁니다.
// 이 메서드는 기존 보호 주문을 취소하지 않습니다.
func (m *ProtectiveOrderManager) PlaceProtective(ctx context.Context, symbol string, spec domain.StopSpec) (*OrderHandle, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}
	m.warnMinNotional(ctx, symbol, spec)

	req := domain.OrderRequest{
		Symbol:        symbol,
		Side:          domain.Sell,
		Type:          domain.StopLossLimit,
		Quantity:      spec.Quantity,
		Price:         decimal.NewNullDecimal(spec.LimitPrice),
		StopPrice:     decimal.NewNullDecimal(spec.TriggerPrice),
		TimeInForce:   domain.GTC,
		ClientOrderID: uuid.NewString(),
	}

	resp, err := m.exchange.PlaceOrder(ctx, req)
	if err != nil {
		return nil, NewPositionError(symbol, "place_protective", err)
	}
	m.metrics.Order(string(req.Side), string(req.Type))

	m.log.WithFields(logrus.Fields{
		"symbol":   symbol,
		"order_id": resp.OrderID,
		"trigger":  spec.TriggerPrice.String(),
		"limit":    spec.LimitPrice.String(),
		"quantity": spec.Quantity.String(),
		"status":   resp.Status,
	}).Info("보호 주문 접수")

	return &OrderHandle{
		OrderID:       resp.OrderID,
		ClientOrderID: resp.ClientOrderID,
		Status:        resp.Status,
		Spec:          spec,
	}, nil
}

func validateSpec(spec domain.StopSpec) error {
	if !spec.Quantity.IsPositive() {
		return Invalid("quantity", "보호 주문 수량은 0보다 커야 합니다: %s", spec.Quantity)
	}
	if !spec.LimitPrice.IsPositive() {
		return Invalid("limit_price", "지정가는 0보다 커야 합니다: %s", spec.LimitPrice)
	}
	if spec.TriggerPrice.LessThan(spec.LimitPrice) {
		return Invalid("trigger_price", "트리거 가격(%s)이 지정가(%s)보다 낮습니다", spec.TriggerPrice, spec.LimitPrice)
	}
	return nil
}

// warnMinNotional은 최소 주문 가치 미달을 경고합니다. 거절 여부는 거래소가 판단합니다.
func (m *ProtectiveOrderManager) warnMinNotional(ctx context.Context, symbol string, spec domain.StopSpec) {
	if m.filters == nil {
		return
	}
	f, err := m.filters.Resolve(ctx, symbol)
	if err != nil || !f.MinNotional.IsPositive() {
		return
	}
	notional := spec.LimitPrice.Mul(spec.Quantity)
	if notional.LessThan(f.MinNotional) {
		m.log.WithFields(logrus.Fields{
			"symbol":       symbol,
			"notional":     notional.String(),
			"min_notional": f.MinNotional.String(),
		}).Warn(fmt.Sprintf("보호 주문 가치가 최소 주문 가치보다 작습니다 (%s < %s)",
			domain.FormatDecimal(notional), domain.FormatDecimal(f.MinNotional)))
	}
}
