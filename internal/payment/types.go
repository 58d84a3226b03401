package payment

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Session is the platform's record of one checkout payment attempt.
// The reconciler never stores it; operations return an updated copy.
type Session struct {
	ID               string         `json:"session_id"`
	GatewayReference string         `json:"gateway_reference"`
	AmountMinorUnits int64          `json:"amount_minor_units"`
	CurrencyCode     string         `json:"currency_code"`
	Status           Status         `json:"status"`
	GatewayPaymentID string         `json:"gateway_payment_id,omitempty"`
	Payment          *PaymentRecord `json:"payment,omitempty"`
}

// Amount returns the session amount in major units.
func (s Session) Amount() decimal.Decimal {
	return ToMajorUnits(s.AmountMinorUnits)
}

// withPayment attaches a fetched payment record.
func (s Session) withPayment(p *PaymentRecord) Session {
	s.Payment = p
	if p != nil && p.ID != "" {
		s.GatewayPaymentID = p.ID
	}
	return s
}

// Notes is Razorpay's free-form key/value map. The API encodes an empty
// notes object as [] so both shapes are accepted.
type Notes map[string]string

func (n *Notes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = nil
		return nil
	}
	if trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*n = Notes{}
		return nil
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	out := make(Notes, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	*n = out
	return nil
}

// OrderRecord mirrors the Razorpay order entity.
type OrderRecord struct {
	ID         string `json:"id"`
	Entity     string `json:"entity"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
	Notes      Notes  `json:"notes"`
	CreatedAt  int64  `json:"created_at"`
}

// PaymentRecord mirrors the Razorpay payment entity.
type PaymentRecord struct {
	ID               string `json:"id"`
	Entity           string `json:"entity"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	OrderID          string `json:"order_id"`
	Method           string `json:"method"`
	Captured         bool   `json:"captured"`
	AmountRefunded   int64  `json:"amount_refunded"`
	RefundStatus     string `json:"refund_status,omitempty"`
	ErrorCode        string `json:"error_code,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	Notes            Notes  `json:"notes"`
	CreatedAt        int64  `json:"created_at"`
}

// RefundRecord mirrors the Razorpay refund entity.
type RefundRecord struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Notes     Notes  `json:"notes"`
	CreatedAt int64  `json:"created_at"`
}

// InitiateInput is the input of Initiate.
type InitiateInput struct {
	SessionID string
	Amount    decimal.Decimal
	Currency  string
}

// Outcome is the result of a status-reading transition attempt. Err is set
// when the gateway or the signature check failed; it is reported, not raised.
type Outcome struct {
	Session Session `json:"session"`
	Status  Status  `json:"status"`
	Reason  string  `json:"reason,omitempty"`
	Err     error   `json:"-"`
}

// CancelAction tells apart a cancellation that reached the gateway from one
// that had nothing to do.
type CancelAction string

const (
	CancelRefunded CancelAction = "refunded"
	CancelNoAction CancelAction = "no_action"
)

type CancelResult struct {
	Session Session       `json:"session"`
	Action  CancelAction  `json:"action"`
	Refund  *RefundRecord `json:"refund,omitempty"`
}

type RefundResult struct {
	Session         Session         `json:"session"`
	Status          Status          `json:"status"`
	RefundReference string          `json:"refund_reference"`
	Amount          decimal.Decimal `json:"amount"`
}

// Retrieved holds the raw gateway view of a session.
type Retrieved struct {
	Order   *OrderRecord   `json:"order,omitempty"`
	Payment *PaymentRecord `json:"payment,omitempty"`
}
