package models

import (
	"strings"
	"time"
)

const (
	DateLayout        = "2006-01-02"
	DefaultMaxResults = 20
	MaxResultsLimit   = 250
	DefaultSortBy     = "cheapest"
)

type SearchFilters struct {
	PriceMax    *float64 `json:"price_max,omitempty"`
	Airlines    []string `json:"airlines,omitempty"`
	MaxDuration *int     `json:"max_duration,omitempty"`
}

type SearchRequest struct {
	Origin        string         `json:"origin"`
	Destination   string         `json:"destination"`
	DepartureDate string         `json:"departure_date"`
	ReturnDate    *string        `json:"return_date,omitempty"`
	Adults        int            `json:"adults"`
	NonStop       bool           `json:"non_stop"`
	MaxResults    int            `json:"max_results"`
	Filters       *SearchFilters `json:"filters,omitempty"`
	SortBy        string         `json:"sort_by,omitempty"`
}

// Validate checks the criteria and fills in defaults. Adults is always 1.
func (r *SearchRequest) Validate() error {
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))

	if r.Origin == "" {
		return ErrMissingOrigin
	}
	if r.Destination == "" {
		return ErrMissingDestination
	}
	if !isAirportCode(r.Origin) || !isAirportCode(r.Destination) {
		return ErrInvalidAirportCode
	}
	if r.Origin == r.Destination {
		return ErrSameOriginDestination
	}
	if r.DepartureDate == "" {
		return ErrMissingDepartureDate
	}
	depart, err := time.Parse(DateLayout, r.DepartureDate)
	if err != nil {
		return ErrInvalidDepartureDate
	}

	if r.ReturnDate != nil && *r.ReturnDate == "" {
		r.ReturnDate = nil
	}
	if r.ReturnDate != nil {
		ret, err := time.Parse(DateLayout, *r.ReturnDate)
		if err != nil {
			return ErrInvalidReturnDate
		}
		if ret.Before(depart) {
			return ErrReturnBeforeDeparture
		}
	}

	r.Adults = 1
	if r.MaxResults <= 0 {
		r.MaxResults = DefaultMaxResults
	}
	if r.MaxResults > MaxResultsLimit {
		r.MaxResults = MaxResultsLimit
	}
	r.SortBy = strings.ToLower(strings.TrimSpace(r.SortBy))
	if r.SortBy == "" {
		r.SortBy = DefaultSortBy
	}
	return nil
}

func isAirportCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin         ValidationError = "origin is required"
	ErrMissingDestination    ValidationError = "destination is required"
	ErrMissingDepartureDate  ValidationError = "departure_date is required"
	ErrInvalidAirportCode    ValidationError = "origin and destination must be 3-letter airport codes"
	ErrSameOriginDestination ValidationError = "origin and destination must differ"
	ErrInvalidDepartureDate  ValidationError = "departure_date must be YYYY-MM-DD"
	ErrInvalidReturnDate     ValidationError = "return_date must be YYYY-MM-DD"
	ErrReturnBeforeDeparture ValidationError = "return_date must not be before departure_date"
)
