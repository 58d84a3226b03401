package models

// APIResponse is the standard response envelope of the platform API.
type APIResponse struct {
	Status bool        `json:"status"`
	Msg    string      `json:"msg"`
	Obj    interface{} `json:"obj"`
}

// PaginatedResponse wraps list results with pagination info.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// --- Session API request payloads ---

// SessionRef is the platform's stored view of a session, sent back on every
// call after initiate.
type SessionRef struct {
	SessionID        string               `json:"session_id"`
	GatewayReference string               `json:"gateway_reference" validate:"required_without=GatewayPaymentID"`
	AmountMinorUnits int64                `json:"amount_minor_units" validate:"gte=0"`
	CurrencyCode     string               `json:"currency_code" validate:"omitempty,len=3"`
	Status           string               `json:"status"`
	GatewayPaymentID string               `json:"gateway_payment_id"`
	Payment          *SessionPaymentState `json:"payment,omitempty"`
}

// SessionPaymentState is the attached gateway payment as last seen.
type SessionPaymentState struct {
	ID       string `json:"id" validate:"required"`
	Amount   int64  `json:"amount" validate:"gte=0"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	OrderID  string `json:"order_id"`
}

type InitiateSessionRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,max=40"`
	Amount    string `json:"amount" validate:"required"`
	Currency  string `json:"currency" validate:"required,len=3"`
}

type ConfirmSessionRequest struct {
	Session   SessionRef `json:"session"`
	PaymentID string     `json:"razorpay_payment_id" validate:"required"`
	Signature string     `json:"razorpay_signature" validate:"required"`
}

type SessionRequest struct {
	Session SessionRef `json:"session"`
}

type RefundSessionRequest struct {
	Session SessionRef `json:"session"`
	Amount  string     `json:"amount" validate:"required"`
}
