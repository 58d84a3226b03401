package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/Sammk21/medusa-v2/internal/payment"
	"github.com/Sammk21/medusa-v2/internal/pkg/utils"
)

// Reporter announces settled payments to an operator channel.
type Reporter interface {
	Report(ctx context.Context, res payment.WebhookResult) error
}

// NopReporter drops every report.
type NopReporter struct{}

func (NopReporter) Report(context.Context, payment.WebhookResult) error { return nil }

// TelegramReporter posts captured and refunded payments to a Telegram chat.
type TelegramReporter struct {
	bot    *tele.Bot
	chat   *tele.Chat
	logger *zap.Logger
}

// NewTelegramReporter creates a reporter. apiURL may be empty for the public
// Bot API.
func NewTelegramReporter(token string, chatID int64, apiURL string, logger *zap.Logger) (*TelegramReporter, error) {
	bot, err := tele.NewBot(tele.Settings{
		URL:     apiURL,
		Token:   token,
		Offline: true,
		OnError: func(err error, _ tele.Context) {
			logger.Error("telebot error", zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telebot: %w", err)
	}
	return &TelegramReporter{
		bot:    bot,
		chat:   &tele.Chat{ID: chatID},
		logger: logger,
	}, nil
}

// NewReporter returns a Telegram reporter when both token and chat are set.
func NewReporter(token string, chatID int64, logger *zap.Logger) (Reporter, error) {
	if token == "" || chatID == 0 {
		return NopReporter{}, nil
	}
	return NewTelegramReporter(token, chatID, "", logger)
}

// Report sends a message for captured and refunded webhooks only.
func (r *TelegramReporter) Report(_ context.Context, res payment.WebhookResult) error {
	text, ok := reportText(res)
	if !ok {
		return nil
	}
	if _, err := r.bot.Send(r.chat, text, tele.ModeHTML); err != nil {
		return fmt.Errorf("send telegram report: %w", err)
	}
	r.logger.Debug("Payment report sent", zap.String("session_ref", res.SessionRef))
	return nil
}

func reportText(res payment.WebhookResult) (string, bool) {
	var title string
	switch res.Action {
	case payment.ActionCaptured:
		title = "💵 Payment captured"
	case payment.ActionRefunded:
		title = "↩️ Payment refunded"
	default:
		return "", false
	}

	var b strings.Builder
	b.WriteString("<b>" + title + "</b>\n\n")
	if res.Amount != nil {
		minor, err := payment.ToMinorUnits(*res.Amount)
		if err == nil {
			fmt.Fprintf(&b, "Amount: %s.%02d\n", utils.FormatNumber(minor/100), minor%100)
		}
	}
	if res.SessionRef != "" {
		fmt.Fprintf(&b, "Session: <code>%s</code>\n", html.EscapeString(res.SessionRef))
	}
	if res.GatewayReference != "" {
		fmt.Fprintf(&b, "Order: <code>%s</code>\n", html.EscapeString(res.GatewayReference))
	}
	if res.PaymentID != "" {
		fmt.Fprintf(&b, "Payment: <code>%s</code>\n", html.EscapeString(res.PaymentID))
	}
	return b.String(), true
}
