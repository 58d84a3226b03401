package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Sammk21/medusa-v2/internal/events"
	"github.com/Sammk21/medusa-v2/internal/models"
	"github.com/Sammk21/medusa-v2/internal/payment"
)

// OperationRecorder counts API operations.
type OperationRecorder interface {
	APIOperation(op, outcome string)
}

type nopOperationRecorder struct{}

func (nopOperationRecorder) APIOperation(string, string) {}

// SessionHandler exposes the payment provider operations to the platform.
type SessionHandler struct {
	provider  payment.Provider
	publisher events.Publisher
	recorder  OperationRecorder
	logger    *zap.Logger
}

func NewSessionHandler(provider payment.Provider, publisher events.Publisher, recorder OperationRecorder, logger *zap.Logger) *SessionHandler {
	if recorder == nil {
		recorder = nopOperationRecorder{}
	}
	return &SessionHandler{
		provider:  provider,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
	}
}

// Initiate handles POST /api/sessions.
func (h *SessionHandler) Initiate(c echo.Context) error {
	var req models.InitiateSessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err.Error(), nil)
	}

	amount, err := payment.ParseAmount(req.Amount)
	if err != nil {
		h.recorder.APIOperation("initiate", outcomeKind(err))
		return paymentErrorResponse(c, err)
	}

	s, err := h.provider.Initiate(c.Request().Context(), payment.InitiateInput{
		SessionID: req.SessionID,
		Amount:    amount,
		Currency:  req.Currency,
	})
	h.recorder.APIOperation("initiate", outcomeKind(err))
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return successResponse(c, "Session initiated", s)
}

// Confirm handles POST /api/sessions/confirm.
func (h *SessionHandler) Confirm(c echo.Context) error {
	var req models.ConfirmSessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err.Error(), nil)
	}

	ctx := c.Request().Context()
	out, err := h.provider.Confirm(ctx, toSession(req.Session), req.PaymentID, req.Signature)
	if err != nil {
		h.recorder.APIOperation("confirm", outcomeKind(err))
		return paymentErrorResponse(c, err)
	}
	h.recorder.APIOperation("confirm", outcomeKind(out.Err))
	h.publishOutcome(ctx, "confirm", req.Session.Status, out.Session)
	return successResponse(c, outcomeMessage(out), outcomeBody(out))
}

// Capture handles POST /api/sessions/capture.
func (h *SessionHandler) Capture(c echo.Context) error {
	var req models.SessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err.Error(), nil)
	}

	ctx := c.Request().Context()
	s, err := h.provider.Capture(ctx, toSession(req.Session))
	h.recorder.APIOperation("capture", outcomeKind(err))
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	h.publishOutcome(ctx, "capture", req.Session.Status, s)
	return successResponse(c, "Payment captured", s)
}

// Cancel handles POST /api/sessions/cancel.
func (h *SessionHandler) Cancel(c echo.Context) error {
	return h.cancel(c, "cancel", h.provider.Cancel)
}

// Delete handles POST /api/sessions/delete.
func (h *SessionHandler) Delete(c echo.Context) error {
	return h.cancel(c, "delete", h.provider.Delete)
}

func (h *SessionHandler) cancel(c echo.Context, op string, fn func(context.Context, payment.Session) (payment.CancelResult, error)) error {
	var req models.SessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err.Error(), nil)
	}

	ctx := c.Request().Context()
	res, err := fn(ctx, toSession(req.Session))
	h.recorder.APIOperation(op, outcomeKind(err))
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	if res.Action == payment.CancelNoAction {
		return successResponse(c, "Nothing to cancel", res)
	}
	h.publishOutcome(ctx, op, req.Session.Status, res.Session)
	return successResponse(c, "Payment cancelled", res)
}

// Refund handles POST /api/sessions/refund.
func (h *SessionHandler) Refund(c echo.Context) error {
	var req models.RefundSessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err.Error(), nil)
	}

	amount, err := payment.ParseAmount(req.Amount)
	if err != nil {
		h.recorder.APIOperation("refund", outcomeKind(err))
		return paymentErrorResponse(c, err)
	}

	ctx := c.Request().Context()
	res, err := h.provider.Refund(ctx, toSession(req.Session), amount)
	h.recorder.APIOperation("refund", outcomeKind(err))
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	h.publishOutcome(ctx, "refund", req.Session.Status, res.Session)
	return successResponse(c, "Payment refunded", res)
}

// Status handles POST /api/sessions/status.
func (h *SessionHandler) Status(c echo.Context) error {
	var req models.SessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err.Error(), nil)
	}

	ctx := c.Request().Context()
	out, err := h.provider.GetStatus(ctx, toSession(req.Session))
	if err != nil {
		h.recorder.APIOperation("status", outcomeKind(err))
		return paymentErrorResponse(c, err)
	}
	h.recorder.APIOperation("status", outcomeKind(out.Err))
	h.publishOutcome(ctx, "status", req.Session.Status, out.Session)
	return successResponse(c, outcomeMessage(out), outcomeBody(out))
}

// Retrieve handles POST /api/sessions/retrieve.
func (h *SessionHandler) Retrieve(c echo.Context) error {
	var req models.SessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err.Error(), nil)
	}

	got, err := h.provider.Retrieve(c.Request().Context(), toSession(req.Session))
	h.recorder.APIOperation("retrieve", outcomeKind(err))
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return successResponse(c, "Successful", got)
}

// publishOutcome emits a status change when an operation moved the session.
func (h *SessionHandler) publishOutcome(ctx context.Context, op, previous string, s payment.Session) {
	if h.publisher == nil || string(s.Status) == previous {
		return
	}
	err := h.publisher.Publish(ctx, events.StatusChanged{
		SessionRef:       s.ID,
		GatewayReference: s.GatewayReference,
		PaymentID:        s.GatewayPaymentID,
		Status:           string(s.Status),
		Source:           "api:" + op,
		AmountMinor:      s.AmountMinorUnits,
	})
	if err != nil {
		h.logger.Error("Failed to publish status change", zap.String("session_id", s.ID), zap.Error(err))
	}
}

func outcomeMessage(out payment.Outcome) string {
	if out.Err != nil {
		return out.Reason
	}
	return "Successful"
}

// outcomeBody renders an Outcome with its error, which the JSON encoding of
// Outcome itself leaves out.
func outcomeBody(out payment.Outcome) map[string]interface{} {
	body := map[string]interface{}{
		"session": out.Session,
		"status":  out.Status,
	}
	if out.Reason != "" {
		body["reason"] = out.Reason
	}
	if perr := payment.GetError(out.Err); perr != nil {
		body["error"] = perr
	}
	return body
}

func toSession(ref models.SessionRef) payment.Session {
	s := payment.Session{
		ID:               ref.SessionID,
		GatewayReference: ref.GatewayReference,
		AmountMinorUnits: ref.AmountMinorUnits,
		CurrencyCode:     ref.CurrencyCode,
		Status:           payment.Status(ref.Status),
		GatewayPaymentID: ref.GatewayPaymentID,
	}
	if !s.Status.IsValid() {
		s.Status = payment.StatusPending
	}
	if p := ref.Payment; p != nil {
		s.Payment = &payment.PaymentRecord{
			ID:       p.ID,
			Amount:   p.Amount,
			Currency: p.Currency,
			Status:   p.Status,
			OrderID:  p.OrderID,
		}
		if s.GatewayPaymentID == "" {
			s.GatewayPaymentID = p.ID
		}
	}
	return s
}
