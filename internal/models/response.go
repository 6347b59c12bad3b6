package models

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dharmasatrya/flightoffers/pkg/currency"
)

// ErrAmountTooLarge rejects client-supplied prices above maxOfferAmount.
var ErrAmountTooLarge = errors.New("amount too large")

var maxOfferAmount = decimal.New(1, 12)

type SearchMetadata struct {
	Provider      string `json:"provider"`
	RawOffers     int    `json:"raw_offers"`
	SkippedOffers int    `json:"skipped_offers"`
	TotalResults  int    `json:"total_results"`
	SearchTimeMs  int64  `json:"search_time_ms"`
	CacheHit      bool   `json:"cache_hit"`
}

type SearchCriteria struct {
	Origin        string         `json:"origin"`
	Destination   string         `json:"destination"`
	DepartureDate string         `json:"departure_date"`
	ReturnDate    *string        `json:"return_date,omitempty"`
	Adults        int            `json:"adults"`
	NonStop       bool           `json:"non_stop"`
	MaxResults    int            `json:"max_results"`
	Filters       *SearchFilters `json:"filters,omitempty"`
	SortBy        string         `json:"sort_by"`
}

type Money struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted,omitempty"`
}

type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type OfferResponse struct {
	ID              string  `json:"id"`
	Origin          string  `json:"origin"`
	Destination     string  `json:"destination"`
	DepartureAt     string  `json:"departure_at"`
	ArrivalAt       string  `json:"arrival_at"`
	Stops           int     `json:"stops"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           Money   `json:"price"`
	ConvertedPrice  Money   `json:"converted_price"`
	Airline         Airline `json:"airline"`
	Itineraries     int     `json:"itineraries"`
	RoundTrip       bool    `json:"round_trip"`
}

type SearchResponse struct {
	SearchCriteria SearchCriteria  `json:"search_criteria"`
	Metadata       SearchMetadata  `json:"metadata"`
	Offers         []OfferResponse `json:"offers"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ToOfferResponse renders a normalized offer for the API. formatted renders
// the converted amount for display.
func ToOfferResponse(o NormalizedOffer, formatted string) OfferResponse {
	return OfferResponse{
		ID:              o.ID,
		Origin:          o.Origin,
		Destination:     o.Destination,
		DepartureAt:     o.DepartureAt,
		ArrivalAt:       o.ArrivalAt,
		Stops:           o.Stops,
		DurationMinutes: o.DurationMinutes,
		Price: Money{
			Amount:   o.SourcePrice.String(),
			Currency: o.SourceCurrency,
		},
		ConvertedPrice: Money{
			Amount:    o.ConvertedPrice.StringFixed(2),
			Currency:  o.DisplayCurrency,
			Formatted: formatted,
		},
		Airline: Airline{
			Code: o.AirlineCode,
			Name: o.AirlineName,
		},
		Itineraries: o.Itineraries,
		RoundTrip:   o.RoundTrip(),
	}
}

// FromOfferResponse rebuilds the fields of a normalized offer that an API
// client sends back, e.g. when requesting a ticket.
func FromOfferResponse(r OfferResponse) (NormalizedOffer, error) {
	converted, err := parseOfferAmount(r.ConvertedPrice.Amount)
	if err != nil {
		return NormalizedOffer{}, err
	}
	source := decimal.Zero
	if r.Price.Amount != "" {
		if source, err = parseOfferAmount(r.Price.Amount); err != nil {
			return NormalizedOffer{}, err
		}
	}
	return NormalizedOffer{
		ID:              r.ID,
		Origin:          r.Origin,
		Destination:     r.Destination,
		DepartureAt:     r.DepartureAt,
		ArrivalAt:       r.ArrivalAt,
		Stops:           r.Stops,
		DurationMinutes: r.DurationMinutes,
		SourcePrice:     source,
		SourceCurrency:  r.Price.Currency,
		ConvertedPrice:  converted,
		DisplayCurrency: r.ConvertedPrice.Currency,
		AirlineCode:     r.Airline.Code,
		AirlineName:     r.Airline.Name,
		Itineraries:     r.Itineraries,
	}, nil
}

func parseOfferAmount(s string) (decimal.Decimal, error) {
	d, err := currency.ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.GreaterThan(maxOfferAmount) {
		return decimal.Zero, ErrAmountTooLarge
	}
	return d, nil
}

func BuildSearchCriteria(req SearchRequest) SearchCriteria {
	return SearchCriteria{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Adults:        req.Adults,
		NonStop:       req.NonStop,
		MaxResults:    req.MaxResults,
		Filters:       req.Filters,
		SortBy:        req.SortBy,
	}
}
