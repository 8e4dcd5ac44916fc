// internal/exchange/binance/client.go
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/assist-by/stopguard/internal/domain"
	"github.com/assist-by/stopguard/internal/exchange"
)

const (
	mainnetURL = "https://api.binance.com"
	testnetURL = "https://testnet.binance.vision"
)

// Client는 바이낸스 현물 API 클라이언트를 구현합니다
type Client struct {
	apiKey           string
	secretKey        string
	http             *resty.Client
	serverTimeOffset int64 // 서버 시간과의 차이를 저장
	mu               sync.RWMutex
}

var _ exchange.Exchange = (*Client)(nil)

// ClientOption은 클라이언트 생성 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 HTTP 클라이언트의 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithBaseURL은 기본 URL을 설정합니다
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.http.SetBaseURL(baseURL)
		}
	}
}

// WithTestnet은 테스트넷 사용 여부를 설정합니다
func WithTestnet(useTestnet bool) ClientOption {
	return func(c *Client) {
		if useTestnet {
			c.http.SetBaseURL(testnetURL)
		} else {
			c.http.SetBaseURL(mainnetURL)
		}
	}
}

// NewClient는 새로운 바이낸스 API 클라이언트를 생성합니다.
// 주문 요청은 멱등하지 않으므로 자동 재시도는 설정하지 않습니다.
func NewClient(apiKey, secretKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:    apiKey,
		secretKey: secretKey,
		http: resty.New().
			SetBaseURL(mainnetURL).
			SetTimeout(10 * time.Second),
	}

	// 옵션 적용
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// doRequest는 HTTP 요청을 실행하고 결과를 반환합니다
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, needSign bool) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}

	// 타임스탬프 추가
	if needSign {
		params.Set("timestamp", strconv.FormatInt(c.getServerTime(), 10))
		params.Set("recvWindow", "5000")
	}

	query := params.Encode()

	// 서명 추가 (서명한 쿼리 문자열 순서를 그대로 유지해야 한다)
	if needSign {
		query = query + "&signature=" + c.sign(query)
	}

	target := endpoint
	if query != "" {
		target = endpoint + "?" + query
	}

	req := c.http.R().SetContext(ctx)
	if needSign {
		req.SetHeader("X-MBX-APIKEY", c.apiKey)
	}

	// 요청 실행
	resp, err := req.Execute(method, target)
	if err != nil {
		return nil, &exchange.TransportError{Op: method + " " + endpoint, Err: err}
	}

	body := resp.Body()

	// 상태 코드 확인
	if resp.StatusCode() >= http.StatusInternalServerError {
		// 5xx는 실행 여부를 알 수 없는 상태다
		return nil, &exchange.TransportError{
			Op:  method + " " + endpoint,
			Err: fmt.Errorf("HTTP 에러(%d): %s", resp.StatusCode(), string(body)),
		}
	}
	if !resp.IsSuccess() {
		var apiErr struct {
			Code    int    `json:"code"`
			Message string `json:"msg"`
		}
		if err := json.Unmarshal(body, &apiErr); err != nil {
			return nil, &exchange.APIError{HTTPStatus: resp.StatusCode(), Message: string(body)}
		}
		return nil, &exchange.APIError{HTTPStatus: resp.StatusCode(), Code: apiErr.Code, Message: apiErr.Message}
	}

	return body, nil
}

// sign은 요청에 대한 서명을 생성합니다
func (c *Client) sign(payload string) string {
	h := hmac.New(sha256.New, []byte(c.secretKey))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

// getServerTime은 현재 서버 시간을 반환합니다
func (c *Client) getServerTime() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Now().UnixMilli() + c.serverTimeOffset
}

// symbolError는 존재하지 않는 심볼 응답을 ErrSymbolNotFound로 바꿉니다
func symbolError(symbol string, err error) error {
	var apiErr *exchange.APIError
	if errors.As(err, &apiErr) && apiErr.Code == domain.ErrCodeInvalidSymbol {
		return exchange.NotFound(symbol)
	}
	return err
}

// SyncTime은 바이낸스 서버와 시간을 동기화합니다
func (c *Client) SyncTime(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v3/time", nil, false)
	if err != nil {
		return fmt.Errorf("서버 시간 조회 실패: %w", err)
	}

	var result struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("서버 시간 파싱 실패: %w", err)
	}

	c.mu.Lock()
	c.serverTimeOffset = result.ServerTime - time.Now().UnixMilli()
	c.mu.Unlock()
	return nil
}

// GetTickerPrices는 모든 심볼의 최근 체결가를 조회합니다
func (c *Client) GetTickerPrices(ctx context.Context) ([]domain.TickerPrice, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v3/ticker/price", nil, false)
	if err != nil {
		return nil, fmt.Errorf("티커 조회 실패: %w", err)
	}

	var tickers []domain.TickerPrice
	if err := json.Unmarshal(resp, &tickers); err != nil {
		return nil, fmt.Errorf("티커 파싱 실패: %w", err)
	}
	return tickers, nil
}

// GetSymbolPrice는 심볼의 최근 체결가를 조회합니다
func (c *Client) GetSymbolPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Add("symbol", symbol)

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v3/ticker/price", params, false)
	if err != nil {
		return decimal.Zero, fmt.Errorf("가격 조회 실패 [%s]: %w", symbol, symbolError(symbol, err))
	}

	var ticker domain.TickerPrice
	if err := json.Unmarshal(resp, &ticker); err != nil {
		return decimal.Zero, fmt.Errorf("가격 파싱 실패: %w", err)
	}
	return ticker.Price, nil
}

// GetSymbolInfo는 특정 심볼의 거래 정보만 조회합니다
func (c *Client) GetSymbolInfo(ctx context.Context, symbol string) (*domain.SymbolInfo, error) {
	params := url.Values{}
	params.Add("symbol", symbol)

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v3/exchangeInfo", params, false)
	if err != nil {
		return nil, fmt.Errorf("심볼 정보 조회 실패: %w", symbolError(symbol, err))
	}

	// exchangeInfo 응답 구조체 정의
	var exchangeInfo struct {
		Symbols []struct {
			Symbol     string `json:"symbol"`
			BaseAsset  string `json:"baseAsset"`
			QuoteAsset string `json:"quoteAsset"`
			Filters    []struct {
				FilterType  string              `json:"filterType"`
				TickSize    decimal.NullDecimal `json:"tickSize"`
				StepSize    decimal.NullDecimal `json:"stepSize"`
				MinNotional decimal.NullDecimal `json:"minNotional"`
			} `json:"filters"`
		} `json:"symbols"`
	}

	if err := json.Unmarshal(resp, &exchangeInfo); err != nil {
		return nil, fmt.Errorf("심볼 정보 파싱 실패: %w", err)
	}

	// 응답에 심볼 정보가 없는 경우
	if len(exchangeInfo.Symbols) == 0 {
		return nil, exchange.NotFound(symbol)
	}

	// 첫 번째(유일한) 심볼 정보 사용
	s := exchangeInfo.Symbols[0]
	info := &domain.SymbolInfo{
		Symbol:     s.Symbol,
		BaseAsset:  s.BaseAsset,
		QuoteAsset: s.QuoteAsset,
	}

	// 필터 정보 추출
	for _, filter := range s.Filters {
		switch filter.FilterType {
		case "PRICE_FILTER": // 가격 단위 필터
			info.TickSize = filter.TickSize
		case "LOT_SIZE": // 수량 단위 필터
			info.StepSize = filter.StepSize
		case "MIN_NOTIONAL", "NOTIONAL": // 최소 주문 가치 필터
			if filter.MinNotional.Valid {
				info.MinNotional = filter.MinNotional
			}
		}
	}

	return info, nil
}

// GetAccount는 계정의 잔고를 조회합니다
func (c *Client) GetAccount(ctx context.Context) (*domain.AccountSnapshot, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v3/account", nil, true)
	if err != nil {
		return nil, fmt.Errorf("계정 조회 실패: %w", err)
	}

	var result struct {
		Balances []domain.Balance `json:"balances"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("응답 파싱 실패: %w", err)
	}

	snapshot := &domain.AccountSnapshot{
		Balances: make(map[string]domain.Balance, len(result.Balances)),
	}
	for _, b := range result.Balances {
		snapshot.Balances[b.Asset] = b
	}
	return snapshot, nil
}

// GetAssetBalance는 자산 하나의 잔고를 조회합니다. 계정에 없는 자산은 0 잔고입니다.
func (c *Client) GetAssetBalance(ctx context.Context, asset string) (domain.Balance, error) {
	snapshot, err := c.GetAccount(ctx)
	if err != nil {
		return domain.Balance{Asset: asset}, err
	}
	return snapshot.Balance(asset), nil
}

// GetOpenOrders는 현재 열린 주문 목록을 조회합니다. symbol이 비어 있으면 계정 전체입니다.
func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]domain.OpenOrder, error) {
	params := url.Values{}
	if symbol != "" {
		params.Add("symbol", symbol)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v3/openOrders", params, true)
	if err != nil {
		return nil, fmt.Errorf("열린 주문 조회 실패: %w", symbolError(symbol, err))
	}

	var ordersRaw []struct {
		OrderID   int64           `json:"orderId"`
		Symbol    string          `json:"symbol"`
		Price     decimal.Decimal `json:"price"`
		StopPrice decimal.Decimal `json:"stopPrice"`
		OrigQty   decimal.Decimal `json:"origQty"`
		Type      string          `json:"type"`
		Side      string          `json:"side"`
	}
	if err := json.Unmarshal(resp, &ordersRaw); err != nil {
		return nil, fmt.Errorf("주문 데이터 파싱 실패: %w", err)
	}

	orders := make([]domain.OpenOrder, len(ordersRaw))
	for i, o := range ordersRaw {
		orders[i] = domain.OpenOrder{
			OrderID:   o.OrderID,
			Symbol:    o.Symbol,
			Type:      domain.OrderType(o.Type),
			Side:      domain.OrderSide(o.Side),
			Price:     o.Price,
			StopPrice: o.StopPrice,
			OrigQty:   o.OrigQty,
		}
	}
	return orders, nil
}

// PlaceOrder는 새로운 주문을 생성합니다
func (c *Client) PlaceOrder(ctx context.Context, order domain.OrderRequest) (*domain.OrderResponse, error) {
	if order.Quantity.Sign() <= 0 {
		return nil, fmt.Errorf("주문 수량은 0보다 커야 합니다: %s", order.Quantity)
	}

	params := url.Values{}
	params.Add("symbol", order.Symbol)
	params.Add("side", string(order.Side))
	params.Add("type", string(order.Type))
	params.Add("quantity", order.Quantity.String())
	params.Add("newOrderRespType", "FULL")

	switch order.Type {
	case domain.Market:
	case domain.StopLossLimit, domain.TakeProfitLimit, domain.Limit:
		if !order.Price.Valid {
			return nil, fmt.Errorf("%s 주문에는 지정가가 필요합니다", order.Type)
		}
		tif := order.TimeInForce
		if tif == "" {
			tif = domain.GTC
		}
		params.Add("timeInForce", string(tif))
		params.Add("price", order.Price.Decimal.String())
		if order.Type != domain.Limit {
			if !order.StopPrice.Valid {
				return nil, fmt.Errorf("%s 주문에는 스탑 가격이 필요합니다", order.Type)
			}
			params.Add("stopPrice", order.StopPrice.Decimal.String())
		}
	case domain.StopLoss, domain.TakeProfit:
		if !order.StopPrice.Valid {
			return nil, fmt.Errorf("%s 주문에는 스탑 가격이 필요합니다", order.Type)
		}
		params.Add("stopPrice", order.StopPrice.Decimal.String())
	default:
		return nil, fmt.Errorf("지원하지 않는 주문 유형: %s", order.Type)
	}

	// 클라이언트 주문 ID
	clientOrderID := order.ClientOrderID
	if clientOrderID == "" {
		clientOrderID = uuid.NewString()
	}
	params.Add("newClientOrderId", clientOrderID)

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v3/order", params, true)
	if err != nil {
		return nil, fmt.Errorf("주문 실행 실패 [심볼: %s, 타입: %s, 수량: %s]: %w",
			order.Symbol, order.Type, order.Quantity, symbolError(order.Symbol, err))
	}

	var result struct {
		OrderID             int64           `json:"orderId"`
		Symbol              string          `json:"symbol"`
		ClientOrderID       string          `json:"clientOrderId"`
		TransactTime        int64           `json:"transactTime"`
		Status              string          `json:"status"`
		Type                string          `json:"type"`
		Side                string          `json:"side"`
		OrigQty             decimal.Decimal `json:"origQty"`
		ExecutedQty         decimal.Decimal `json:"executedQty"`
		CummulativeQuoteQty decimal.Decimal `json:"cummulativeQuoteQty"`
		Fills               []domain.Fill   `json:"fills"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("주문 응답 파싱 실패: %w", err)
	}

	return &domain.OrderResponse{
		OrderID:          result.OrderID,
		Symbol:           result.Symbol,
		ClientOrderID:    result.ClientOrderID,
		Status:           result.Status,
		Type:             domain.OrderType(result.Type),
		Side:             domain.OrderSide(result.Side),
		OrigQuantity:     result.OrigQty,
		ExecutedQuantity: result.ExecutedQty,
		QuoteQuantity:    result.CummulativeQuoteQty,
		Fills:            result.Fills,
		TransactTime:     time.UnixMilli(result.TransactTime),
	}, nil
}

// CancelOrder는 주문을 취소합니다
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("orderId", strconv.FormatInt(orderID, 10))

	_, err := c.doRequest(ctx, http.MethodDelete, "/api/v3/order", params, true)
	if err != nil {
		return fmt.Errorf("주문 취소 실패 (ID: %d): %w", orderID, err)
	}
	return nil
}
