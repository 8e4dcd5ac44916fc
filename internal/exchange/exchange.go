// internal/exchange/exchange.go
package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/assist-by/stopguard/internal/domain"
)

// Exchange는 현물 거래소와의 상호작용을 위한 인터페이스입니다.
// 모든 호출은 동기식이며 숫자는 decimal로만 주고받습니다.
type Exchange interface {
	// 시장 데이터 조회
	GetTickerPrices(ctx context.Context) ([]domain.TickerPrice, error)
	GetSymbolPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	GetSymbolInfo(ctx context.Context, symbol string) (*domain.SymbolInfo, error)

	// 계정 데이터 조회
	GetAccount(ctx context.Context) (*domain.AccountSnapshot, error)
	GetAssetBalance(ctx context.Context, asset string) (domain.Balance, error)
	GetOpenOrders(ctx context.Context, symbol string) ([]domain.OpenOrder, error)

	// 거래 기능
	PlaceOrder(ctx context.Context, order domain.OrderRequest) (*domain.OrderResponse, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error

	// 시간 동기화
	SyncTime(ctx context.Context) error
}
