package discord

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/stopguard/internal/notification"
)

type recorder struct {
	mu       sync.Mutex
	paths    []string
	messages []WebhookMessage
}

func (r *recorder) server(t *testing.T, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var msg WebhookMessage
		if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
			t.Errorf("decode: %v", err)
		}
		r.mu.Lock()
		r.paths = append(r.paths, req.URL.Path)
		r.messages = append(r.messages, msg)
		r.mu.Unlock()
		w.WriteHeader(status)
	}))
}

func TestClient_Routing(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t, http.StatusNoContent)
	defer srv.Close()

	c := NewClient(srv.URL+"/trade", srv.URL+"/error", "")

	require.NoError(t, c.SendInfo("hello"))
	require.NoError(t, c.SendError(errors.New("boom")))
	require.NoError(t, c.SendTradeResult(notification.TradeInfo{Flow: "buy", Symbol: "BTCUSDT"}))

	assert.Equal(t, []string{"/trade", "/error", "/trade"}, rec.paths)
	assert.Contains(t, rec.messages[1].Embeds[0].Description, "boom")
}

func TestClient_TradeResultEmbed(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t, http.StatusOK)
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	err := c.SendTradeResult(notification.TradeInfo{
		Flow:       "buy_protected",
		Symbol:     "BTCUSDT",
		Side:       "BUY",
		Quantity:   decimal.RequireFromString("0.00100000"),
		AvgPrice:   decimal.RequireFromString("60000"),
		StopPrice:  decimal.RequireFromString("59400"),
		LimitPrice: decimal.RequireFromString("59340"),
		OrderIDs:   map[string]int64{"sl": 2, "buy": 1},
	})
	require.NoError(t, err)

	require.Len(t, rec.messages, 1)
	embed := rec.messages[0].Embeds[0]
	assert.Contains(t, embed.Title, "BTCUSDT")
	assert.Equal(t, notification.ColorSuccess, embed.Color)
	assert.Equal(t, footerText, embed.Footer.Text)

	values := map[string]string{}
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "0.001", values["수량"])
	assert.Equal(t, "59400", values["SL 트리거"])
	assert.Equal(t, "buy=1, sl=2", values["주문 ID"])
}

func TestClient_ErrorStatus(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t, http.StatusBadRequest)
	defer srv.Close()

	assert.Error(t, NewClient(srv.URL, "", "").SendInfo("x"))
}

func TestClient_EmptyWebhook(t *testing.T) {
	assert.NoError(t, NewClient("", "", "").SendInfo("dropped"))
}

func TestClient_SkippedTradeResult(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t, http.StatusOK)
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, "", "").SendTradeResult(notification.TradeInfo{
		Flow:    "protect",
		Symbol:  "BTCUSDT",
		Skipped: true,
	}))

	require.Len(t, rec.messages, 1)
	embed := rec.messages[0].Embeds[0]
	assert.Equal(t, notification.ColorWarning, embed.Color)
	assert.NotEmpty(t, embed.Description)
	assert.Empty(t, embed.Fields, "empty side and zero amounts are omitted")
	assert.NotEmpty(t, embed.Timestamp)
}
