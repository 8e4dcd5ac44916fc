package discord

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/assist-by/stopguard/internal/domain"
)

const footerText = "stopguard 🛡️"

// WebhookMessage는 Discord 웹훅 본문입니다
type WebhookMessage struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed는 Discord 메시지 임베드입니다
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

// newEmbed는 제목, 색상, 푸터, 현재 시각이 채워진 임베드를 만듭니다
func newEmbed(title string, color int) *Embed {
	return &Embed{
		Title:     title,
		Color:     color,
		Footer:    &EmbedFooter{Text: footerText},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func (e *Embed) field(name, value string, inline bool) {
	if value == "" {
		return
	}
	e.Fields = append(e.Fields, EmbedField{Name: name, Value: value, Inline: inline})
}

// amount는 0이 아닌 값만 인라인 필드로 붙입니다
func (e *Embed) amount(name string, value decimal.Decimal) {
	if value.IsZero() {
		return
	}
	e.field(name, domain.FormatDecimal(value), true)
}

func (e *Embed) message() WebhookMessage {
	return WebhookMessage{Embeds: []Embed{*e}}
}
