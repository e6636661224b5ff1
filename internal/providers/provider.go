package providers

import (
	"context"

	"github.com/dharmasatrya/flightbooking/internal/models"
)

// Provider is one source of flight offers. Remote providers wrap upstream
// search APIs; the synthetic provider fabricates offers locally and is only
// ever used as an explicit fallback.
type Provider interface {
	Name() string
	Source() models.OfferSource
	Search(ctx context.Context, req models.SearchRequest) ([]models.Offer, error)
}

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}
