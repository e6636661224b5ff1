// Package payment abstracts the external payment-intent provider. Success
// yields a hosted redirect URL; confirmation that the money moved arrives
// out-of-band, so callers never flip local state to paid on their own.
package payment

import (
	"context"
	"errors"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Billing is the fully-defaulted billing block sent to the provider. Callers
// fill missing optional sub-fields before building an IntentRequest.
type Billing struct {
	Name       string
	Email      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type IntentRequest struct {
	BookingID   string
	Amount      float64
	Currency    string
	Description string
	Billing     Billing
}

type IntentResponse struct {
	ProviderRef string `json:"provider_ref"`
	RedirectURL string `json:"redirect_url"`
}

// Gateway creates a payment intent for a priced booking session.
type Gateway interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentResponse, error)
}

// GatewayError carries the provider's user-visible message, if it gave one.
type GatewayError struct {
	Gateway string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return e.Gateway + ": " + e.Message
	}
	return e.Gateway + ": " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// UserMessage extracts a displayable message from a gateway failure, falling
// back to a generic one.
func UserMessage(err error) string {
	var ge *GatewayError
	if errors.As(err, &ge) && ge.Message != "" {
		return ge.Message
	}
	return "Payment could not be processed. Please try again."
}
