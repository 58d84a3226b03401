package payment

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Sammk21/medusa-v2/internal/pkg/utils"
)

const providerName = "razorpay"

// Secrets holds the credentials the reconciler verifies signatures with.
// They are set once at construction and never logged.
type Secrets struct {
	KeySecret     string
	WebhookSecret string
}

// Recorder receives reconciler measurements.
type Recorder interface {
	GatewayCall(op string, err error)
	SignatureRejected(kind string)
	WebhookHandled(action string)
}

type nopRecorder struct{}

func (nopRecorder) GatewayCall(string, error) {}
func (nopRecorder) SignatureRejected(string)  {}
func (nopRecorder) WebhookHandled(string)     {}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithRecorder sets the metrics sink.
func WithRecorder(rec Recorder) Option {
	return func(r *Reconciler) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Reconciler) {
		if t != nil {
			r.tracer = t
		}
	}
}

// Reconciler maps the gateway's state onto payment sessions. It holds no
// per-session state: every operation takes a Session and returns the new
// value for the caller to persist.
type Reconciler struct {
	gateway       GatewayClient
	keySecret     string
	webhookSecret string
	logger        *zap.Logger
	recorder      Recorder
	tracer        trace.Tracer
}

var _ Provider = (*Reconciler)(nil)

// NewReconciler creates a reconciler over the given gateway client.
func NewReconciler(gateway GatewayClient, secrets Secrets, logger *zap.Logger, opts ...Option) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reconciler{
		gateway:       gateway,
		keySecret:     secrets.KeySecret,
		webhookSecret: secrets.WebhookSecret,
		logger:        logger.Named("reconciler"),
		recorder:      nopRecorder{},
		tracer:        otel.Tracer("github.com/Sammk21/medusa-v2/internal/payment"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) Name() string {
	return providerName
}

// Initiate creates a gateway order for a new session.
func (r *Reconciler) Initiate(ctx context.Context, in InitiateInput) (Session, error) {
	minor, err := ToMinorUnits(in.Amount)
	if err != nil {
		return Session{}, err
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return Session{}, err
	}

	receipt := in.SessionID
	if receipt == "" {
		receipt = utils.GenerateReceiptID()
	}
	notes := map[string]string{sessionNoteKey: receipt}

	ctx, span := r.tracer.Start(ctx, "payment.Initiate",
		trace.WithAttributes(attribute.Int64("amount_minor", minor), attribute.String("currency", currency)))
	defer span.End()

	order, err := r.gateway.CreateOrder(ctx, minor, currency, receipt, notes)
	r.recorder.GatewayCall("create_order", err)
	if err != nil {
		r.logger.Error("Gateway order creation failed", zap.String("receipt", receipt), zap.Error(err))
		return Session{}, newGatewayError("create order", err)
	}

	r.logger.Info("Payment session initiated",
		zap.String("session_id", receipt),
		zap.String("order_id", order.ID),
		zap.Int64("amount_minor", minor),
	)
	return Session{
		ID:               receipt,
		GatewayReference: order.ID,
		AmountMinorUnits: minor,
		CurrencyCode:     currency,
		Status:           StatusPending,
	}, nil
}

// Confirm verifies the checkout signature for paymentRef and, only when it
// is authentic, fetches the payment and maps its status. A bad signature
// yields status error without any gateway call.
func (r *Reconciler) Confirm(ctx context.Context, s Session, paymentRef, signature string) (Outcome, error) {
	if s.GatewayReference == "" {
		return Outcome{}, newInvalidState("session has no gateway order", s.ID)
	}

	if !VerifyPaymentSignature(s.GatewayReference, paymentRef, signature, r.keySecret) {
		r.logger.Warn("Payment signature mismatch",
			zap.String("session_id", s.ID),
			zap.String("order_id", s.GatewayReference),
			zap.String("payment_id", paymentRef),
		)
		r.recorder.SignatureRejected("payment")
		s.Status = StatusError
		return Outcome{
			Session: s,
			Status:  StatusError,
			Reason:  "invalid signature",
			Err:     newSignatureInvalid("payment signature verification failed"),
		}, nil
	}

	ctx, span := r.tracer.Start(ctx, "payment.Confirm", trace.WithAttributes(attribute.String("payment_id", paymentRef)))
	defer span.End()

	p, err := r.gateway.FetchPayment(ctx, paymentRef)
	r.recorder.GatewayCall("fetch_payment", err)
	if err != nil {
		r.logger.Warn("Payment fetch after confirmation failed",
			zap.String("session_id", s.ID),
			zap.String("payment_id", paymentRef),
			zap.Error(err),
		)
		s.GatewayPaymentID = paymentRef
		s.Status = StatusPending
		return Outcome{Session: s, Status: StatusPending, Reason: "payment fetch failed", Err: newGatewayError("fetch payment", err)}, nil
	}

	if p.OrderID != "" && p.OrderID != s.GatewayReference {
		s.Status = StatusError
		return Outcome{Session: s, Status: StatusError, Reason: "payment belongs to another order",
			Err: newInvalidState("payment order mismatch", p.OrderID)}, nil
	}
	if s.AmountMinorUnits > 0 && p.Amount != s.AmountMinorUnits {
		s.Status = StatusError
		return Outcome{Session: s, Status: StatusError, Reason: "payment amount mismatch",
			Err: newInvalidAmount("payment amount does not match session", ToMajorUnits(p.Amount).String())}, nil
	}

	s = s.withPayment(p)
	s.Status = MapPaymentStatus(p.Status)
	r.logger.Info("Payment confirmed",
		zap.String("session_id", s.ID),
		zap.String("payment_id", p.ID),
		zap.String("gateway_status", p.Status),
		zap.String("status", s.Status.String()),
	)
	return Outcome{Session: s, Status: s.Status}, nil
}

// Capture captures the attached authorized payment for its full amount.
func (r *Reconciler) Capture(ctx context.Context, s Session) (Session, error) {
	p := s.Payment
	if p == nil || p.ID == "" {
		return s, newInvalidState("no payment record attached to session", s.ID)
	}
	if p.Amount <= 0 {
		return s, newInvalidState("attached payment has no amount", p.ID)
	}
	if p.Status == gatewayPaymentCaptured {
		s.Status = StatusCaptured
		return s, nil
	}
	if p.Status != gatewayPaymentAuthorized {
		return s, newInvalidState("attached payment is not authorized", p.Status)
	}

	currency := p.Currency
	if currency == "" {
		currency = s.CurrencyCode
	}

	ctx, span := r.tracer.Start(ctx, "payment.Capture", trace.WithAttributes(attribute.String("payment_id", p.ID)))
	defer span.End()

	captured, err := r.gateway.CapturePayment(ctx, p.ID, p.Amount, currency)
	r.recorder.GatewayCall("capture_payment", err)
	if err != nil {
		r.logger.Error("Payment capture failed", zap.String("payment_id", p.ID), zap.Error(err))
		return s, newGatewayError("capture payment", err)
	}

	s = s.withPayment(captured)
	s.Status = MapPaymentStatus(captured.Status)
	r.logger.Info("Payment captured", zap.String("session_id", s.ID), zap.String("payment_id", captured.ID))
	return s, nil
}

// Cancel voids an authorized payment. The gateway has no void, so an
// authorized payment is refunded in full and re-fetched. Anything else is
// left untouched and reported as no_action.
func (r *Reconciler) Cancel(ctx context.Context, s Session) (CancelResult, error) {
	p := s.Payment
	if p == nil || p.ID == "" || p.Status != gatewayPaymentAuthorized {
		return CancelResult{Session: s, Action: CancelNoAction}, nil
	}
	if p.Amount <= 0 {
		return CancelResult{Session: s}, newInvalidState("attached payment has no amount", p.ID)
	}

	ctx, span := r.tracer.Start(ctx, "payment.Cancel", trace.WithAttributes(attribute.String("payment_id", p.ID)))
	defer span.End()

	refund, err := r.gateway.RefundPayment(ctx, p.ID, p.Amount)
	r.recorder.GatewayCall("refund_payment", err)
	if err != nil {
		r.logger.Error("Cancellation refund failed", zap.String("payment_id", p.ID), zap.Error(err))
		return CancelResult{Session: s}, newGatewayError("refund payment", err)
	}

	updated, err := r.gateway.FetchPayment(ctx, p.ID)
	r.recorder.GatewayCall("fetch_payment", err)
	if err != nil {
		r.logger.Error("Payment fetch after cancellation failed", zap.String("payment_id", p.ID), zap.Error(err))
		return CancelResult{Session: s, Refund: refund}, newGatewayError("fetch payment", err)
	}

	s = s.withPayment(updated)
	s.Status = MapPaymentStatus(updated.Status)
	r.logger.Info("Payment cancelled",
		zap.String("session_id", s.ID),
		zap.String("payment_id", p.ID),
		zap.String("refund_id", refund.ID),
	)
	return CancelResult{Session: s, Action: CancelRefunded, Refund: refund}, nil
}

// Delete is the platform's session-removal hook; it cancels like Cancel.
func (r *Reconciler) Delete(ctx context.Context, s Session) (CancelResult, error) {
	return r.Cancel(ctx, s)
}

// Refund refunds amount (major units) of the session's payment. Partial
// refunds are not tracked here; the gateway keeps the ledger.
func (r *Reconciler) Refund(ctx context.Context, s Session, amount decimal.Decimal) (RefundResult, error) {
	minor, err := ToMinorUnits(amount)
	if err != nil {
		return RefundResult{}, err
	}
	if minor == 0 {
		return RefundResult{}, newInvalidAmount("refund amount must be positive")
	}
	if s.GatewayPaymentID == "" {
		return RefundResult{}, newInvalidState("session has no payment to refund", s.ID)
	}

	ctx, span := r.tracer.Start(ctx, "payment.Refund",
		trace.WithAttributes(attribute.String("payment_id", s.GatewayPaymentID), attribute.Int64("amount_minor", minor)))
	defer span.End()

	refund, err := r.gateway.RefundPayment(ctx, s.GatewayPaymentID, minor)
	r.recorder.GatewayCall("refund_payment", err)
	if err != nil {
		r.logger.Error("Refund failed", zap.String("payment_id", s.GatewayPaymentID), zap.Error(err))
		return RefundResult{}, newGatewayError("refund payment", err)
	}

	s.Status = StatusRefunded
	r.logger.Info("Payment refunded",
		zap.String("session_id", s.ID),
		zap.String("refund_id", refund.ID),
		zap.Int64("amount_minor", refund.Amount),
	)
	return RefundResult{
		Session:         s,
		Status:          StatusRefunded,
		RefundReference: refund.ID,
		Amount:          ToMajorUnits(refund.Amount),
	}, nil
}

// GetStatus polls the gateway without changing anything upstream. Gateway
// failures come back in Outcome.Err with the session status unchanged.
func (r *Reconciler) GetStatus(ctx context.Context, s Session) (Outcome, error) {
	if s.GatewayReference == "" && s.GatewayPaymentID == "" {
		return Outcome{}, newInvalidState("session has no gateway reference", s.ID)
	}

	ctx, span := r.tracer.Start(ctx, "payment.GetStatus")
	defer span.End()

	if s.GatewayPaymentID != "" {
		p, err := r.gateway.FetchPayment(ctx, s.GatewayPaymentID)
		r.recorder.GatewayCall("fetch_payment", err)
		if err != nil {
			return r.unchanged(s, "fetch payment", err), nil
		}
		s = s.withPayment(p)
		s.Status = MapPaymentStatus(p.Status)
		return Outcome{Session: s, Status: s.Status}, nil
	}

	order, err := r.gateway.FetchOrder(ctx, s.GatewayReference)
	r.recorder.GatewayCall("fetch_order", err)
	if err != nil {
		return r.unchanged(s, "fetch order", err), nil
	}
	status := MapOrderStatus(order.Status)

	if order.Status == gatewayOrderAttempted || order.Status == gatewayOrderPaid {
		payments, err := r.gateway.FetchOrderPayments(ctx, order.ID)
		r.recorder.GatewayCall("fetch_order_payments", err)
		if err != nil {
			r.logger.Warn("Order payments fetch failed", zap.String("order_id", order.ID), zap.Error(err))
		} else if p := pickPayment(payments); p != nil {
			s = s.withPayment(p)
			status = MapPaymentStatus(p.Status)
			if order.Status == gatewayOrderPaid {
				status = StatusCaptured
			}
		}
	}

	s.Status = status
	return Outcome{Session: s, Status: status}, nil
}

// Retrieve returns the raw gateway records behind a session.
func (r *Reconciler) Retrieve(ctx context.Context, s Session) (Retrieved, error) {
	if s.GatewayReference == "" && s.GatewayPaymentID == "" {
		return Retrieved{}, newInvalidState("session has no gateway reference", s.ID)
	}

	var out Retrieved
	if s.GatewayReference != "" {
		order, err := r.gateway.FetchOrder(ctx, s.GatewayReference)
		r.recorder.GatewayCall("fetch_order", err)
		if err != nil {
			return Retrieved{}, newGatewayError("fetch order", err)
		}
		out.Order = order
	}
	if s.GatewayPaymentID != "" {
		p, err := r.gateway.FetchPayment(ctx, s.GatewayPaymentID)
		r.recorder.GatewayCall("fetch_payment", err)
		if err != nil {
			return Retrieved{}, newGatewayError("fetch payment", err)
		}
		out.Payment = p
	}
	return out, nil
}

func (r *Reconciler) unchanged(s Session, op string, err error) Outcome {
	r.logger.Warn("Status poll failed",
		zap.String("session_id", s.ID),
		zap.String("op", op),
		zap.Error(err),
	)
	return Outcome{Session: s, Status: s.Status, Reason: op + " failed", Err: newGatewayError(op, err)}
}

// pickPayment prefers the most advanced payment of an order: captured, then
// authorized, then the most recent attempt.
func pickPayment(payments []PaymentRecord) *PaymentRecord {
	var best *PaymentRecord
	for i := range payments {
		p := &payments[i]
		switch {
		case best == nil:
			best = p
		case paymentRank(p.Status) > paymentRank(best.Status):
			best = p
		case paymentRank(p.Status) == paymentRank(best.Status) && p.CreatedAt > best.CreatedAt:
			best = p
		}
	}
	return best
}

func paymentRank(status string) int {
	switch status {
	case gatewayPaymentRefunded:
		return 4
	case gatewayPaymentCaptured:
		return 3
	case gatewayPaymentAuthorized:
		return 2
	case gatewayPaymentCreated:
		return 1
	default:
		return 0
	}
}
