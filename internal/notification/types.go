package notification

import "github.com/shopspring/decimal"

const (
	ColorSuccess = 0x00FF00 // 녹색
	ColorError   = 0xFF0000 // 빨간색
	ColorInfo    = 0x0000FF // 파란색
	ColorWarning = 0xFFA500 // 주황색
)

// Notifier는 알림 전송 인터페이스를 정의합니다
type Notifier interface {
	// SendError는 에러 알림을 전송합니다
	SendError(err error) error

	// SendInfo는 일반 정보 알림을 전송합니다
	SendInfo(message string) error

	// SendTradeResult는 완료된 거래 흐름의 결과를 전송합니다
	SendTradeResult(info TradeInfo) error
}

// TradeInfo는 거래 흐름 실행 결과를 정의합니다
type TradeInfo struct {
	Flow       string          // buy, buy_protected, protect, liquidate, cancel
	Symbol     string          // 심볼 (예: BTCUSDT)
	Side       string          // BUY or SELL (주문이 없으면 빈 값)
	Quantity   decimal.Decimal // 체결/보호 수량
	AvgPrice   decimal.Decimal // 평균 체결가 (없으면 0)
	StopPrice  decimal.Decimal // 보호 주문 트리거 가격 (없으면 0)
	LimitPrice decimal.Decimal // 보호 주문 지정가 (없으면 0)
	OrderIDs   map[string]int64
	Canceled   int  // 취소된 보호 주문 수
	Skipped    bool // 처리할 잔고가 없어 건너뜀
}

// GetColorForFlow는 흐름 종류에 따른 색상을 반환합니다
func GetColorForFlow(flow string) int {
	switch flow {
	case "buy", "buy_protected":
		return ColorSuccess
	case "liquidate":
		return ColorError
	case "cancel", "cancel_all":
		return ColorWarning
	default:
		return ColorInfo
	}
}

// Nop은 아무것도 전송하지 않는 Notifier입니다
type Nop struct{}

func (Nop) SendError(error) error           { return nil }
func (Nop) SendInfo(string) error           { return nil }
func (Nop) SendTradeResult(TradeInfo) error { return nil }
