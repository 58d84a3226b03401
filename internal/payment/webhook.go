package payment

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Webhook event types the reconciler acts on.
const (
	EventPaymentAuthorized = "payment.authorized"
	EventPaymentCaptured   = "payment.captured"
	EventPaymentFailed     = "payment.failed"
	EventOrderPaid         = "order.paid"
	EventRefundProcessed   = "refund.processed"
)

// sessionNoteKey is the order note Initiate stores the session id under.
const sessionNoteKey = "session_id"

// WebhookAction is what the platform should do with a webhook delivery.
type WebhookAction string

const (
	ActionAuthorized   WebhookAction = "authorized"
	ActionCaptured     WebhookAction = "captured"
	ActionRefunded     WebhookAction = "refunded"
	ActionFailed       WebhookAction = "failed"
	ActionNotSupported WebhookAction = "not_supported"
)

// WebhookEvent is one gateway delivery. RawBody is the exact request body;
// it must not be re-encoded before verification.
type WebhookEvent struct {
	EventID         string
	EventType       string
	RawBody         []byte
	SignatureHeader string
	Payload         *WebhookPayload
}

// WebhookPayload is the Razorpay webhook envelope.
type WebhookPayload struct {
	Entity    string   `json:"entity"`
	AccountID string   `json:"account_id"`
	Event     string   `json:"event"`
	Contains  []string `json:"contains"`
	Payload   struct {
		Payment *struct {
			Entity PaymentRecord `json:"entity"`
		} `json:"payment,omitempty"`
		Order *struct {
			Entity OrderRecord `json:"entity"`
		} `json:"order,omitempty"`
		Refund *struct {
			Entity RefundRecord `json:"entity"`
		} `json:"refund,omitempty"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

func (p *WebhookPayload) payment() *PaymentRecord {
	if p.Payload.Payment == nil {
		return nil
	}
	return &p.Payload.Payment.Entity
}

func (p *WebhookPayload) order() *OrderRecord {
	if p.Payload.Order == nil {
		return nil
	}
	return &p.Payload.Order.Entity
}

func (p *WebhookPayload) refund() *RefundRecord {
	if p.Payload.Refund == nil {
		return nil
	}
	return &p.Payload.Refund.Entity
}

// NewWebhookEvent builds an event from the wire. The body is kept verbatim;
// a body that does not parse still yields an event so the signature check
// can run and reject it.
func NewWebhookEvent(rawBody []byte, header http.Header) WebhookEvent {
	ev := WebhookEvent{
		EventID:         header.Get(EventIDHeader),
		RawBody:         rawBody,
		SignatureHeader: header.Get(SignatureHeader),
	}
	var payload WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err == nil {
		ev.Payload = &payload
		ev.EventType = payload.Event
	}
	return ev
}

// WebhookResult is the platform-facing outcome of a delivery.
type WebhookResult struct {
	Action           WebhookAction    `json:"action"`
	EventType        string           `json:"event_type,omitempty"`
	SessionRef       string           `json:"session_ref,omitempty"`
	GatewayReference string           `json:"gateway_reference,omitempty"`
	PaymentID        string           `json:"payment_id,omitempty"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	Err              error            `json:"-"`
}

// HandleWebhook verifies a delivery and maps it to an action. It never
// returns an error: unknown event types are a neutral not_supported outcome
// and authenticity failures are reported through Err.
func (r *Reconciler) HandleWebhook(ctx context.Context, ev WebhookEvent) WebhookResult {
	_, span := r.tracer.Start(ctx, "payment.HandleWebhook")
	defer span.End()

	if !r.VerifyWebhook(ev.RawBody, ev.SignatureHeader) {
		r.logger.Warn("Rejected webhook with invalid signature",
			zap.String("event_id", ev.EventID),
			zap.String("event_type", ev.EventType),
			zap.Bool("webhook_secret_set", r.webhookSecret != ""),
		)
		r.recorder.SignatureRejected("webhook")
		return r.webhookResult(WebhookResult{
			Action:    ActionFailed,
			EventType: ev.EventType,
			Err:       newSignatureInvalid("webhook signature verification failed"),
		})
	}

	payload := ev.Payload
	if payload == nil {
		var parsed WebhookPayload
		if err := json.Unmarshal(ev.RawBody, &parsed); err != nil {
			r.logger.Warn("Webhook body is not a gateway event", zap.String("event_id", ev.EventID), zap.Error(err))
			return r.webhookResult(WebhookResult{Action: ActionNotSupported, EventType: ev.EventType})
		}
		payload = &parsed
	}
	eventType := payload.Event
	if eventType == "" {
		eventType = ev.EventType
	}

	var result WebhookResult
	switch eventType {
	case EventPaymentAuthorized:
		result = paymentAction(ActionAuthorized, payload)
	case EventPaymentCaptured:
		result = paymentAction(ActionCaptured, payload)
	case EventOrderPaid:
		result = orderPaidAction(payload)
	case EventPaymentFailed:
		result = paymentAction(ActionFailed, payload)
	case EventRefundProcessed:
		result = refundAction(payload)
	default:
		r.logger.Info("Webhook event type not handled", zap.String("event_type", eventType))
		return r.webhookResult(WebhookResult{Action: ActionNotSupported, EventType: eventType})
	}
	result.EventType = eventType

	r.logger.Info("Webhook reconciled",
		zap.String("event_id", ev.EventID),
		zap.String("event_type", eventType),
		zap.String("action", string(result.Action)),
		zap.String("session_ref", result.SessionRef),
	)
	return r.webhookResult(result)
}

// VerifyWebhook reports whether rawBody carries a valid signature for the
// configured webhook secret.
func (r *Reconciler) VerifyWebhook(rawBody []byte, signature string) bool {
	return VerifyWebhookSignature(rawBody, signature, r.webhookSecret)
}

func (r *Reconciler) webhookResult(res WebhookResult) WebhookResult {
	r.recorder.WebhookHandled(string(res.Action))
	return res
}

func paymentAction(action WebhookAction, payload *WebhookPayload) WebhookResult {
	res := WebhookResult{Action: action}
	p := payload.payment()
	if p == nil {
		return res
	}
	amount := ToMajorUnits(p.Amount)
	res.Amount = &amount
	res.PaymentID = p.ID
	res.GatewayReference = p.OrderID
	res.SessionRef = sessionRef(p.OrderID, p.Notes, orderNotes(payload))
	return res
}

func orderPaidAction(payload *WebhookPayload) WebhookResult {
	res := paymentAction(ActionCaptured, payload)
	o := payload.order()
	if o == nil {
		return res
	}
	if res.Amount == nil {
		amount := ToMajorUnits(o.AmountPaid)
		res.Amount = &amount
	}
	res.GatewayReference = o.ID
	res.SessionRef = sessionRef(o.ID, o.Notes, paymentNotes(payload))
	return res
}

func refundAction(payload *WebhookPayload) WebhookResult {
	res := WebhookResult{Action: ActionRefunded}
	rf := payload.refund()
	if rf == nil {
		return res
	}
	amount := ToMajorUnits(rf.Amount)
	res.Amount = &amount
	res.PaymentID = rf.PaymentID

	if p := payload.payment(); p != nil {
		res.GatewayReference = p.OrderID
		res.SessionRef = sessionRef(p.OrderID, rf.Notes, p.Notes)
		return res
	}
	res.SessionRef = sessionRef("", rf.Notes)
	return res
}

// sessionRef picks the session id from the first notes map carrying one,
// falling back to the gateway order id.
func sessionRef(orderID string, notes ...Notes) string {
	for _, n := range notes {
		if id := n[sessionNoteKey]; id != "" {
			return id
		}
	}
	return orderID
}

func orderNotes(payload *WebhookPayload) Notes {
	if o := payload.order(); o != nil {
		return o.Notes
	}
	return nil
}

func paymentNotes(payload *WebhookPayload) Notes {
	if p := payload.payment(); p != nil {
		return p.Notes
	}
	return nil
}
