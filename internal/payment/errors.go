package payment

import (
	"errors"
	"fmt"
)

// ErrorKind classifies reconciler failures.
type ErrorKind string

const (
	KindInvalidAmount    ErrorKind = "invalid_amount"
	KindInvalidState     ErrorKind = "invalid_state"
	KindSignatureInvalid ErrorKind = "signature_invalid"
	KindGateway          ErrorKind = "gateway_error"
	KindNotSupported     ErrorKind = "not_supported"
)

// Error is the error type returned by the reconciler and its helpers.
// Message is safe to show to the platform; Details carries extra context
// such as the gateway's own description.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Err     error     `json:"-"`
}

// Sentinels for errors.Is. Only Kind is compared.
var (
	ErrInvalidAmount    = &Error{Kind: KindInvalidAmount, Message: "invalid amount"}
	ErrInvalidState     = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrSignatureInvalid = &Error{Kind: KindSignatureInvalid, Message: "invalid signature"}
	ErrGateway          = &Error{Kind: KindGateway, Message: "gateway error"}
	ErrNotSupported     = &Error{Kind: KindNotSupported, Message: "not supported"}
)

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newInvalidAmount(message string, details ...string) *Error {
	return &Error{Kind: KindInvalidAmount, Message: message, Details: firstOrEmpty(details)}
}

func newInvalidState(message string, details ...string) *Error {
	return &Error{Kind: KindInvalidState, Message: message, Details: firstOrEmpty(details)}
}

func newSignatureInvalid(message string) *Error {
	return &Error{Kind: KindSignatureInvalid, Message: message}
}

// newGatewayError wraps a collaborator failure. The gateway's description is
// kept in Details so it survives into logs and API responses.
func newGatewayError(op string, err error) *Error {
	description := err.Error()
	var apiErr *GatewayAPIError
	if errors.As(err, &apiErr) && apiErr.Description != "" {
		description = apiErr.Description
	}
	return &Error{
		Kind:    KindGateway,
		Message: op + " failed",
		Details: description,
		Err:     err,
	}
}

// GetError extracts *Error from err.
func GetError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// KindOf returns the error kind, or "" when err is not a reconciler error.
func KindOf(err error) ErrorKind {
	if e := GetError(err); e != nil {
		return e.Kind
	}
	return ""
}

func firstOrEmpty(values []string) string {
	if len(values) > 0 {
		return values[0]
	}
	return ""
}
