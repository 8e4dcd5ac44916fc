package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	mainnetStreamURL = "wss://stream.binance.com:9443"
	testnetStreamURL = "wss://stream.testnet.binance.vision"
)

// StreamPrice는 스트림으로 받은 최근 가격입니다
type StreamPrice struct {
	Price     decimal.Decimal
	EventTime time.Time
}

// PriceStream은 miniTicker 스트림으로 심볼별 최근 가격을 유지합니다.
// 화면 표시 전용이며 거래 흐름에서는 사용하지 않습니다.
type PriceStream struct {
	baseURL        string
	symbols        []string
	log            logrus.FieldLogger
	readTimeout    time.Duration
	reconnectDelay time.Duration
	maxDelay       time.Duration

	mu     sync.RWMutex
	prices map[string]StreamPrice
}

// StreamOption은 스트림 생성 옵션을 정의합니다
type StreamOption func(*PriceStream)

// WithStreamURL은 스트림 기본 URL을 설정합니다
func WithStreamURL(baseURL string) StreamOption {
	return func(s *PriceStream) {
		if baseURL != "" {
			s.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithStreamTestnet은 테스트넷 스트림 사용 여부를 설정합니다
func WithStreamTestnet(useTestnet bool) StreamOption {
	return func(s *PriceStream) {
		if useTestnet {
			s.baseURL = testnetStreamURL
		}
	}
}

// WithStreamLogger는 로거를 설정합니다
func WithStreamLogger(log logrus.FieldLogger) StreamOption {
	return func(s *PriceStream) {
		s.log = log
	}
}

// WithReconnectDelay는 재연결 대기 시간의 시작값과 상한을 설정합니다
func WithReconnectDelay(base, limit time.Duration) StreamOption {
	return func(s *PriceStream) {
		s.reconnectDelay = base
		s.maxDelay = limit
	}
}

// NewPriceStream은 새로운 가격 스트림을 생성합니다
func NewPriceStream(symbols []string, opts ...StreamOption) *PriceStream {
	s := &PriceStream{
		baseURL:        mainnetStreamURL,
		symbols:        symbols,
		log:            logrus.StandardLogger(),
		readTimeout:    60 * time.Second,
		reconnectDelay: time.Second,
		maxDelay:       30 * time.Second,
		prices:         make(map[string]StreamPrice),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL은 구독할 combined stream 주소를 반환합니다
func (s *PriceStream) URL() string {
	streams := make([]string, len(s.symbols))
	for i, symbol := range s.symbols {
		streams[i] = strings.ToLower(symbol) + "@miniTicker"
	}
	return s.baseURL + "/stream?streams=" + strings.Join(streams, "/")
}

// LastPrice는 심볼의 최근 스트림 가격을 반환합니다
func (s *PriceStream) LastPrice(symbol string) (StreamPrice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[strings.ToUpper(symbol)]
	return p, ok
}

// Price는 최근 가격만 반환합니다
func (s *PriceStream) Price(symbol string) (decimal.Decimal, bool) {
	p, ok := s.LastPrice(symbol)
	return p.Price, ok
}

// Run은 ctx가 취소될 때까지 연결을 유지하며 가격을 갱신합니다
func (s *PriceStream) Run(ctx context.Context) error {
	if len(s.symbols) == 0 {
		return fmt.Errorf("구독할 심볼이 없습니다")
	}

	var delay time.Duration
	for {
		connected, err := s.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay = s.retryDelay(delay, connected)
		s.log.WithError(err).WithField("retry_in", delay).Warn("가격 스트림 연결 끊김")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// retryDelay는 다음 재연결 대기 시간을 정합니다.
// 연결에 성공했던 세션 뒤에는 기본값부터 다시 시작합니다.
func (s *PriceStream) retryDelay(prev time.Duration, connected bool) time.Duration {
	if connected || prev <= 0 {
		return s.reconnectDelay
	}
	if next := prev * 2; next < s.maxDelay {
		return next
	}
	return s.maxDelay
}

// session은 한 번의 연결 수명 동안 메시지를 읽습니다. connected는 dial 성공 여부입니다.
func (s *PriceStream) session(ctx context.Context) (connected bool, err error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.URL(), nil)
	if err != nil {
		return false, fmt.Errorf("스트림 연결 실패: %w", err)
	}
	defer conn.Close()

	s.log.WithField("symbols", s.symbols).Info("가격 스트림 연결됨")

	// ctx 취소 시 읽기를 깨운다
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("스트림 읽기 실패: %w", err)
		}
		if err := s.handleMessage(msg); err != nil {
			s.log.WithError(err).Debug("스트림 메시지 무시")
		}
	}
}

// handleMessage는 combined stream의 miniTicker 메시지를 반영합니다
func (s *PriceStream) handleMessage(msg []byte) error {
	var envelope struct {
		Stream string `json:"stream"`
		Data   struct {
			Event     string          `json:"e"`
			EventTime int64           `json:"E"`
			Symbol    string          `json:"s"`
			Close     decimal.Decimal `json:"c"`
		} `json:"data"`
	}
	if err := json.Unmarshal(msg, &envelope); err != nil {
		return fmt.Errorf("스트림 메시지 파싱 실패: %w", err)
	}
	if envelope.Data.Event != "24hrMiniTicker" || envelope.Data.Symbol == "" {
		return fmt.Errorf("알 수 없는 이벤트: %q", envelope.Data.Event)
	}

	s.mu.Lock()
	s.prices[envelope.Data.Symbol] = StreamPrice{
		Price:     envelope.Data.Close,
		EventTime: time.UnixMilli(envelope.Data.EventTime),
	}
	s.mu.Unlock()
	return nil
}
