package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Sammk21/medusa-v2/internal/pkg/httpclient"
)

// DefaultRazorpayBaseURL is the Razorpay REST API root.
const DefaultRazorpayBaseURL = "https://api.razorpay.com/v1"

// GatewayAPIError is a non-2xx answer from Razorpay, decoded from
// {"error": {"code": ..., "description": ...}}.
type GatewayAPIError struct {
	StatusCode  int
	Code        string
	Description string
	Reason      string
}

func (e *GatewayAPIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("razorpay: status %d", e.StatusCode)
	}
	return fmt.Sprintf("razorpay: %s (%s, status %d)", e.Description, e.Code, e.StatusCode)
}

// RazorpayClient implements GatewayClient against the Razorpay REST API.
type RazorpayClient struct {
	client *httpclient.Client
}

// NewRazorpayClient creates a client authenticated with the API key pair.
// An empty baseURL selects the production endpoint.
func NewRazorpayClient(keyID, keySecret, baseURL string) *RazorpayClient {
	if baseURL == "" {
		baseURL = DefaultRazorpayBaseURL
	}
	return &RazorpayClient{
		client: httpclient.New().
			WithTimeout(30*time.Second).
			WithBaseURL(baseURL).
			WithBasicAuth(keyID, keySecret),
	}
}

func (r *RazorpayClient) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*OrderRecord, error) {
	body := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		body["notes"] = notes
	}

	var order OrderRecord
	if err := r.client.PostJSON(ctx, "/orders", body, &order); err != nil {
		return nil, decodeGatewayError("create order", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay create order: no order id returned")
	}
	return &order, nil
}

func (r *RazorpayClient) FetchOrder(ctx context.Context, orderID string) (*OrderRecord, error) {
	var order OrderRecord
	if err := r.client.GetJSON(ctx, "/orders/"+url.PathEscape(orderID), &order); err != nil {
		return nil, decodeGatewayError("fetch order", err)
	}
	return &order, nil
}

func (r *RazorpayClient) FetchOrderPayments(ctx context.Context, orderID string) ([]PaymentRecord, error) {
	var collection struct {
		Entity string          `json:"entity"`
		Count  int             `json:"count"`
		Items  []PaymentRecord `json:"items"`
	}
	if err := r.client.GetJSON(ctx, "/orders/"+url.PathEscape(orderID)+"/payments", &collection); err != nil {
		return nil, decodeGatewayError("fetch order payments", err)
	}
	return collection.Items, nil
}

func (r *RazorpayClient) FetchPayment(ctx context.Context, paymentID string) (*PaymentRecord, error) {
	var p PaymentRecord
	if err := r.client.GetJSON(ctx, "/payments/"+url.PathEscape(paymentID), &p); err != nil {
		return nil, decodeGatewayError("fetch payment", err)
	}
	return &p, nil
}

func (r *RazorpayClient) CapturePayment(ctx context.Context, paymentID string, amountMinor int64, currency string) (*PaymentRecord, error) {
	body := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
	}
	var p PaymentRecord
	if err := r.client.PostJSON(ctx, "/payments/"+url.PathEscape(paymentID)+"/capture", body, &p); err != nil {
		return nil, decodeGatewayError("capture payment", err)
	}
	return &p, nil
}

func (r *RazorpayClient) RefundPayment(ctx context.Context, paymentID string, amountMinor int64) (*RefundRecord, error) {
	body := map[string]interface{}{
		"amount": amountMinor,
	}
	var refund RefundRecord
	if err := r.client.PostJSON(ctx, "/payments/"+url.PathEscape(paymentID)+"/refund", body, &refund); err != nil {
		return nil, decodeGatewayError("refund payment", err)
	}
	return &refund, nil
}

// decodeGatewayError turns a status error into a GatewayAPIError carrying
// Razorpay's description. Transport errors are wrapped as they are.
func decodeGatewayError(op string, err error) error {
	var statusErr *httpclient.StatusError
	if !errors.As(err, &statusErr) {
		return fmt.Errorf("razorpay %s: %w", op, err)
	}

	var body struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
			Reason      string `json:"reason"`
		} `json:"error"`
	}
	_ = json.Unmarshal(statusErr.Body, &body)

	return &GatewayAPIError{
		StatusCode:  statusErr.StatusCode,
		Code:        body.Error.Code,
		Description: body.Error.Description,
		Reason:      body.Error.Reason,
	}
}
