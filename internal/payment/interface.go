package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// GatewayClient issues the remote calls the reconciler needs. Amounts are
// always in minor units.
type GatewayClient interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*OrderRecord, error)
	FetchOrder(ctx context.Context, orderID string) (*OrderRecord, error)
	FetchOrderPayments(ctx context.Context, orderID string) ([]PaymentRecord, error)
	FetchPayment(ctx context.Context, paymentID string) (*PaymentRecord, error)
	CapturePayment(ctx context.Context, paymentID string, amountMinor int64, currency string) (*PaymentRecord, error)
	RefundPayment(ctx context.Context, paymentID string, amountMinor int64) (*RefundRecord, error)
}

// Provider is the capability contract every gateway integration exposes to
// the platform. Callers depend on it rather than on a concrete gateway.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	Initiate(ctx context.Context, in InitiateInput) (Session, error)
	Confirm(ctx context.Context, s Session, paymentRef, signature string) (Outcome, error)
	Capture(ctx context.Context, s Session) (Session, error)
	Cancel(ctx context.Context, s Session) (CancelResult, error)
	Delete(ctx context.Context, s Session) (CancelResult, error)
	Refund(ctx context.Context, s Session, amount decimal.Decimal) (RefundResult, error)
	Retrieve(ctx context.Context, s Session) (Retrieved, error)
	GetStatus(ctx context.Context, s Session) (Outcome, error)
	HandleWebhook(ctx context.Context, ev WebhookEvent) WebhookResult
}
