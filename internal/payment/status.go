package payment

// Status is the platform-neutral payment session status.
type Status string

const (
	StatusPending      Status = "pending"
	StatusAuthorized   Status = "authorized"
	StatusCaptured     Status = "captured"
	StatusRefunded     Status = "refunded"
	StatusFailed       Status = "failed"
	StatusError        Status = "error"
	StatusNotSupported Status = "not_supported"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAuthorized, StatusCaptured, StatusRefunded,
		StatusFailed, StatusError, StatusNotSupported:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the reconciler will not move the session further.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRefunded, StatusFailed, StatusError, StatusNotSupported:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// Razorpay payment entity statuses.
const (
	gatewayPaymentCreated    = "created"
	gatewayPaymentAuthorized = "authorized"
	gatewayPaymentCaptured   = "captured"
	gatewayPaymentFailed     = "failed"
	gatewayPaymentRefunded   = "refunded"
)

// Razorpay order entity statuses.
const (
	gatewayOrderCreated   = "created"
	gatewayOrderAttempted = "attempted"
	gatewayOrderPaid      = "paid"
)

// MapPaymentStatus maps a gateway payment status. Unknown values map to
// pending: the true terminal state is unknown and failing would block
// legitimate flows.
func MapPaymentStatus(gatewayStatus string) Status {
	switch gatewayStatus {
	case gatewayPaymentCreated:
		return StatusPending
	case gatewayPaymentAuthorized:
		return StatusAuthorized
	case gatewayPaymentCaptured:
		return StatusCaptured
	case gatewayPaymentFailed:
		return StatusError
	case gatewayPaymentRefunded:
		return StatusRefunded
	default:
		return StatusPending
	}
}

// MapOrderStatus maps a gateway order status. Unknown values map to pending.
func MapOrderStatus(gatewayStatus string) Status {
	switch gatewayStatus {
	case gatewayOrderPaid:
		return StatusCaptured
	case gatewayOrderAttempted:
		return StatusAuthorized
	case gatewayOrderCreated:
		return StatusPending
	default:
		return StatusPending
	}
}
