package discord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/assist-by/stopguard/internal/notification"
)

// SendError는 에러 알림을 전송합니다
func (c *Client) SendError(err error) error {
	embed := newEmbed("에러 발생", notification.ColorError)
	embed.Description = fmt.Sprintf("```%v```", err)
	return c.sendToWebhook(c.errorWebhook, embed.message())
}

// SendInfo는 일반 정보 알림을 전송합니다
func (c *Client) SendInfo(message string) error {
	embed := newEmbed("", notification.ColorInfo)
	embed.Description = message
	return c.sendToWebhook(c.infoWebhook, embed.message())
}

// SendTradeResult는 거래 흐름 결과를 전송합니다
func (c *Client) SendTradeResult(info notification.TradeInfo) error {
	color := notification.GetColorForFlow(info.Flow)
	if info.Skipped {
		color = notification.ColorWarning
	}
	embed := newEmbed(fmt.Sprintf("%s: %s", flowTitle(info.Flow), info.Symbol), color)
	if info.Skipped {
		embed.Description = "처리할 잔고가 없어 건너뛰었습니다"
	}

	embed.field("방향", info.Side, true)
	embed.amount("수량", info.Quantity)
	embed.amount("평균가", info.AvgPrice)
	embed.amount("SL 트리거", info.StopPrice)
	embed.amount("SL 지정가", info.LimitPrice)
	if info.Canceled > 0 {
		embed.field("취소된 보호 주문", fmt.Sprint(info.Canceled), true)
	}
	embed.field("주문 ID", formatOrderIDs(info.OrderIDs), false)

	return c.sendToWebhook(c.tradeWebhook, embed.message())
}

func flowTitle(flow string) string {
	switch flow {
	case "buy":
		return "🟢 시장가 매수"
	case "buy_protected":
		return "🛡️ 매수 + SL"
	case "protect":
		return "🛡️ 보유 잔고 SL"
	case "liquidate":
		return "🔴 전량 매도"
	case "cancel", "cancel_all":
		return "🗑️ SL/TP 취소"
	default:
		return flow
	}
}

func formatOrderIDs(ids map[string]int64) string {
	if len(ids) == 0 {
		return ""
	}
	keys := make([]string, 0, len(ids))
	for k := range ids {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, ids[k])
	}
	return strings.Join(parts, ", ")
}
