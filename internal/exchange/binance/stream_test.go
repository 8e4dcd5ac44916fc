package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceStream_URL(t *testing.T) {
	s := NewPriceStream([]string{"BTCUSDT", "ethusdt"})
	assert.Equal(t, "wss://stream.binance.com:9443/stream?streams=btcusdt@miniTicker/ethusdt@miniTicker", s.URL())

	s = NewPriceStream([]string{"BTCUSDT"}, WithStreamTestnet(true))
	assert.True(t, strings.HasPrefix(s.URL(), testnetStreamURL))
}

func TestPriceStream_HandleMessage(t *testing.T) {
	s := NewPriceStream([]string{"BTCUSDT"})

	err := s.handleMessage([]byte(`{"stream":"btcusdt@miniTicker","data":{"e":"24hrMiniTicker","E":1700000000000,"s":"BTCUSDT","c":"60123.45000000","o":"1","h":"1","l":"1","v":"1","q":"1"}}`))
	require.NoError(t, err)

	p, ok := s.LastPrice("btcusdt")
	require.True(t, ok)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("60123.45")))
	assert.Equal(t, int64(1700000000000), p.EventTime.UnixMilli())

	assert.Error(t, s.handleMessage([]byte(`{"result":null,"id":1}`)))
	assert.Error(t, s.handleMessage([]byte(`not json`)))
}

func TestPriceStream_Run(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "btcusdt@miniTicker", r.URL.Query().Get("streams"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"stream":"btcusdt@miniTicker","data":{"e":"24hrMiniTicker","E":1700000000000,"s":"BTCUSDT","c":"100.5"}}`))
		// 클라이언트가 닫을 때까지 대기
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	s := NewPriceStream([]string{"BTCUSDT"},
		WithStreamURL("ws"+strings.TrimPrefix(server.URL, "http")),
		WithStreamLogger(log),
		WithReconnectDelay(10*time.Millisecond, 50*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	assert.Eventually(t, func() bool {
		p, ok := s.LastPrice("BTCUSDT")
		return ok && p.Price.Equal(decimal.RequireFromString("100.5"))
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run이 종료되지 않았습니다")
	}
}

func TestPriceStream_RetryDelay(t *testing.T) {
	s := NewPriceStream([]string{"BTCUSDT"}, WithReconnectDelay(time.Second, 4*time.Second))

	var delay time.Duration
	var got []time.Duration
	for _, connected := range []bool{false, false, false, false, true, false} {
		delay = s.retryDelay(delay, connected)
		got = append(got, delay)
	}
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second,
		time.Second, 2 * time.Second,
	}, got)
}

func TestPriceStream_RunWithoutSymbols(t *testing.T) {
	assert.Error(t, NewPriceStream(nil).Run(context.Background()))
}
