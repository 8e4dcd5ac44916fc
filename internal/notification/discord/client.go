// Package discord는 Discord 웹훅으로 거래 알림을 전송합니다.
package discord

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/assist-by/stopguard/internal/notification"
)

// Client는 채널별 웹훅을 가진 Discord 알림 클라이언트입니다
type Client struct {
	tradeWebhook string
	errorWebhook string
	infoWebhook  string
	http         *resty.Client
}

var _ notification.Notifier = (*Client)(nil)

// ClientOption은 클라이언트 생성 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 HTTP 요청 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// NewClient는 새로운 Discord 클라이언트를 생성합니다.
// 비어 있는 웹훅은 tradeWebhook으로 대체됩니다.
func NewClient(tradeWebhook, errorWebhook, infoWebhook string, opts ...ClientOption) *Client {
	if errorWebhook == "" {
		errorWebhook = tradeWebhook
	}
	if infoWebhook == "" {
		infoWebhook = tradeWebhook
	}
	c := &Client{
		tradeWebhook: tradeWebhook,
		errorWebhook: errorWebhook,
		infoWebhook:  infoWebhook,
		http:         resty.New().SetTimeout(10 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sendToWebhook은 메시지를 웹훅으로 전송합니다
func (c *Client) sendToWebhook(webhookURL string, msg WebhookMessage) error {
	if webhookURL == "" {
		return nil
	}

	resp, err := c.http.R().
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		Post(webhookURL)
	if err != nil {
		return fmt.Errorf("웹훅 전송 실패: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("웹훅 응답 에러: status=%d, body=%s", resp.StatusCode(), resp.String())
	}
	return nil
}
