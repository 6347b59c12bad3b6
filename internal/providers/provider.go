package providers

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/dharmasatrya/flightoffers/internal/models"
)

//go:generate mockgen -destination=../mocks/mock_provider.go -package=mocks . Provider

// Provider fetches raw offers for validated criteria.
type Provider interface {
	Name() string
	Search(ctx context.Context, req models.SearchRequest) ([]models.FlightOffer, error)
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

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Code, e.Body)
}

// IsRetryable reports whether a failed fetch is worth another attempt:
// network errors, 429 and 5xx responses.
func IsRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
