// Package notify sends a short pass summary to Telegram.
package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/logger"
	"notion-trade-sync/internal/types"
)

type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

var _ interfaces.Notifier = (*Notifier)(nil)

// NewTelegram connects to the bot API. endpoint may be empty for the public API.
func NewTelegram(token string, chatID int64, endpoint string) (*Notifier, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	logger.Info(context.Background(), "Telegram bot connected", "username", bot.Self.UserName)
	return &Notifier{bot: bot, chatID: chatID}, nil
}

func (n *Notifier) NotifyPass(ctx context.Context, r types.SyncResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, FormatPass(r))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// FormatPass renders a pass summary as a Markdown message.
func FormatPass(r types.SyncResult) string {
	icon := "✅"
	if r.FailedCount > 0 {
		icon = "⚠️"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s *Notion sync*\n", icon)
	fmt.Fprintf(&b, "Synced: %d\nDuplicates: %d\n", r.SuccessCount, r.DuplicateCount)
	if r.FailedCount > 0 {
		fmt.Fprintf(&b, "Failed: %d (retried next pass)\n", r.FailedCount)
	}
	if r.PassID != "" {
		fmt.Fprintf(&b, "Pass: `%s`", r.PassID)
	}
	return strings.TrimRight(b.String(), "\n")
}
