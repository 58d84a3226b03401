package payment

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*OrderRecord, error) {
	args := m.Called(ctx, amountMinor, currency, receipt, notes)
	if o := args.Get(0); o != nil {
		return o.(*OrderRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) FetchOrder(ctx context.Context, orderID string) (*OrderRecord, error) {
	args := m.Called(ctx, orderID)
	if o := args.Get(0); o != nil {
		return o.(*OrderRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) FetchOrderPayments(ctx context.Context, orderID string) ([]PaymentRecord, error) {
	args := m.Called(ctx, orderID)
	if p := args.Get(0); p != nil {
		return p.([]PaymentRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) FetchPayment(ctx context.Context, paymentID string) (*PaymentRecord, error) {
	args := m.Called(ctx, paymentID)
	if p := args.Get(0); p != nil {
		return p.(*PaymentRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) CapturePayment(ctx context.Context, paymentID string, amountMinor int64, currency string) (*PaymentRecord, error) {
	args := m.Called(ctx, paymentID, amountMinor, currency)
	if p := args.Get(0); p != nil {
		return p.(*PaymentRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) RefundPayment(ctx context.Context, paymentID string, amountMinor int64) (*RefundRecord, error) {
	args := m.Called(ctx, paymentID, amountMinor)
	if r := args.Get(0); r != nil {
		return r.(*RefundRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

type countingRecorder struct {
	calls    map[string]int
	rejected map[string]int
	handled  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		calls:    map[string]int{},
		rejected: map[string]int{},
		handled:  map[string]int{},
	}
}

func (c *countingRecorder) GatewayCall(op string, _ error) { c.calls[op]++ }
func (c *countingRecorder) SignatureRejected(kind string)  { c.rejected[kind]++ }
func (c *countingRecorder) WebhookHandled(action string)   { c.handled[action]++ }
