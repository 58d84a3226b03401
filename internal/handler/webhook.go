package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Sammk21/medusa-v2/internal/events"
	"github.com/Sammk21/medusa-v2/internal/models"
	"github.com/Sammk21/medusa-v2/internal/notify"
	"github.com/Sammk21/medusa-v2/internal/payment"
)

// maxWebhookBody caps the webhook body read into memory.
const maxWebhookBody = 1 << 20

// Column sizes of the delivery log.
const (
	maxEventIDLength   = 191
	maxEventTypeLength = 100
)

// WebhookReconciler is the part of the payment provider the ingress needs.
type WebhookReconciler interface {
	HandleWebhook(ctx context.Context, ev payment.WebhookEvent) payment.WebhookResult
}

// WebhookLog stores received deliveries.
type WebhookLog interface {
	Create(ctx context.Context, event *models.WebhookEvent) error
}

// WebhookHandler receives Razorpay webhook deliveries.
type WebhookHandler struct {
	reconciler WebhookReconciler
	store      WebhookLog
	publisher  events.Publisher
	reporter   notify.Reporter
	logger     *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(
	reconciler WebhookReconciler,
	store WebhookLog,
	publisher events.Publisher,
	reporter notify.Reporter,
	logger *zap.Logger,
) *WebhookHandler {
	if reporter == nil {
		reporter = notify.NopReporter{}
	}
	return &WebhookHandler{
		reconciler: reconciler,
		store:      store,
		publisher:  publisher,
		reporter:   reporter,
		logger:     logger,
	}
}

// Razorpay handles POST /webhooks/razorpay. The body is read once and passed
// on verbatim for signature verification.
func (h *WebhookHandler) Razorpay(c echo.Context) error {
	req := c.Request()
	rawBody, err := io.ReadAll(io.LimitReader(req.Body, maxWebhookBody))
	if err != nil {
		h.logger.Warn("Failed to read webhook body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	ctx := req.Context()
	ev := payment.NewWebhookEvent(rawBody, req.Header)
	res := h.reconciler.HandleWebhook(ctx, ev)

	h.record(ctx, ev, res)

	if errors.Is(res.Err, payment.ErrSignatureInvalid) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
	}

	if res.Action != payment.ActionNotSupported {
		h.publish(ctx, res)
		if err := h.reporter.Report(ctx, res); err != nil {
			h.logger.Warn("Failed to report payment", zap.String("session_ref", res.SessionRef), zap.Error(err))
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"action": res.Action,
	})
}

func (h *WebhookHandler) record(ctx context.Context, ev payment.WebhookEvent, res payment.WebhookResult) {
	if h.store == nil {
		return
	}
	entry := &models.WebhookEvent{
		EventID:        clip(ev.EventID, maxEventIDLength),
		EventType:      res.EventType,
		SignatureValid: !errors.Is(res.Err, payment.ErrSignatureInvalid),
		Action:         string(res.Action),
		SessionRef:     res.SessionRef,
		GatewayRef:     res.GatewayReference,
		PaymentID:      res.PaymentID,
	}
	if entry.EventType == "" {
		entry.EventType = ev.EventType
	}
	entry.EventType = clip(entry.EventType, maxEventTypeLength)
	// Unauthenticated bodies are not stored; only the metadata is kept.
	if entry.SignatureValid {
		entry.Payload = string(ev.RawBody)
	}
	if res.Amount != nil {
		if minor, err := payment.ToMinorUnits(*res.Amount); err == nil {
			entry.AmountMinor = minor
		}
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}
	if err := h.store.Create(ctx, entry); err != nil {
		h.logger.Error("Failed to store webhook delivery", zap.String("event_id", ev.EventID), zap.Error(err))
	}
}

func (h *WebhookHandler) publish(ctx context.Context, res payment.WebhookResult) {
	if h.publisher == nil {
		return
	}
	event := events.StatusChanged{
		SessionRef:       res.SessionRef,
		GatewayReference: res.GatewayReference,
		PaymentID:        res.PaymentID,
		Status:           string(res.Action),
		Source:           "webhook",
		EventType:        res.EventType,
	}
	if res.Amount != nil {
		if minor, err := payment.ToMinorUnits(*res.Amount); err == nil {
			event.AmountMinor = minor
		}
	}
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Error("Failed to publish status change", zap.String("session_ref", res.SessionRef), zap.Error(err))
	}
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
