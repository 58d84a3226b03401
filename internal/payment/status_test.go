package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapPaymentStatus(t *testing.T) {
	tests := map[string]Status{
		"created":    StatusPending,
		"authorized": StatusAuthorized,
		"captured":   StatusCaptured,
		"failed":     StatusError,
		"refunded":   StatusRefunded,
		"":           StatusPending,
		"on_hold":    StatusPending,
		"CAPTURED":   StatusPending,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapPaymentStatus(in), "payment status %q", in)
	}
}

func TestMapOrderStatus(t *testing.T) {
	tests := map[string]Status{
		"created":   StatusPending,
		"attempted": StatusAuthorized,
		"paid":      StatusCaptured,
		"expired":   StatusPending,
		"":          StatusPending,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapOrderStatus(in), "order status %q", in)
	}
}

func TestMappedStatusesAreValid(t *testing.T) {
	for _, in := range []string{"created", "authorized", "captured", "failed", "refunded", "attempted", "paid", "x"} {
		assert.True(t, MapPaymentStatus(in).IsValid())
		assert.True(t, MapOrderStatus(in).IsValid())
	}
	assert.False(t, Status("unknown").IsValid())
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusAuthorized.IsTerminal())
	assert.False(t, StatusCaptured.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())
	assert.True(t, StatusError.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusNotSupported.IsTerminal())
}
