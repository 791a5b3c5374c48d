package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the checkout error taxonomy.
// Use errors.Is() to check against these.
var (
	// ErrMissingField marks a programming-contract violation: a required
	// cart or session field was absent where the flow guarantees presence.
	ErrMissingField = errors.New("required field missing")

	// ErrValidation marks a structured validation error set from the cart API.
	ErrValidation = errors.New("cart validation failed")

	// ErrInterrupt marks a business-rule rejection that cannot be resolved
	// inside the payment sheet and requires the full web checkout.
	ErrInterrupt = errors.New("checkout interrupted")

	// ErrCurrencyChanged marks currency drift between cart snapshots.
	// Always fatal to the sheet flow; never retried.
	ErrCurrencyChanged = errors.New("cart currency changed")

	// ErrTransport marks a network-level failure talking to the cart API.
	ErrTransport = errors.New("cart request failed")
)

// MissingFieldError reports which required field was absent.
// Non-recoverable: the caller violated the flow's contract.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field missing: %s", e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// NewMissingFieldError creates a descriptive contract-violation error.
func NewMissingFieldError(field string) *MissingFieldError {
	return &MissingFieldError{Field: field}
}

// UserError is one structured validation error from the cart API:
// the violated field path, a buyer-readable message, and a machine code.
type UserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

// FieldPath joins the field segments into a dotted path for matching
// and logging. Empty when the error is not field-addressable.
func (e UserError) FieldPath() string {
	return strings.Join(e.Field, ".")
}

// ValidationError wraps the full user-error set returned by one mutation.
type ValidationError struct {
	Errors []UserError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "cart validation failed"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, ue := range e.Errors {
		if path := ue.FieldPath(); path != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", path, ue.Message))
			continue
		}
		parts = append(parts, ue.Message)
	}
	return "cart validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// CurrencyChangedError reports drift from the session's pinned currency.
type CurrencyChangedError struct {
	Pinned string
	Got    string
}

func (e *CurrencyChangedError) Error() string {
	return fmt.Sprintf("cart currency changed from %s to %s", e.Pinned, e.Got)
}

func (e *CurrencyChangedError) Unwrap() error {
	return ErrCurrencyChanged
}

// TransportError wraps a network-level failure with the operation name.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return ErrTransport
}

// NewTransportError wraps err as a transport failure of the named operation.
func NewTransportError(operation string, err error) *TransportError {
	return &TransportError{Operation: operation, Err: err}
}
