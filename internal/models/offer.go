package models

import "github.com/shopspring/decimal"

// FlightOffer is a raw offer record as returned by the upstream provider.
type FlightOffer struct {
	ID                     string      `json:"id"`
	Source                 string      `json:"source,omitempty"`
	Itineraries            []Itinerary `json:"itineraries"`
	Price                  *OfferPrice `json:"price"`
	ValidatingAirlineCodes []string    `json:"validatingAirlineCodes,omitempty"`
}

type Itinerary struct {
	Duration string    `json:"duration,omitempty"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	CarrierCode string   `json:"carrierCode"`
	Number      string   `json:"number,omitempty"`
	Departure   Endpoint `json:"departure"`
	Arrival     Endpoint `json:"arrival"`
}

type Endpoint struct {
	IATACode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

type OfferPrice struct {
	Currency   string `json:"currency"`
	Total      string `json:"total,omitempty"`
	Base       string `json:"base,omitempty"`
	GrandTotal string `json:"grandTotal"`
}

// NormalizedOffer is the canonical view of one FlightOffer. It is built once
// per raw offer and never modified afterwards.
type NormalizedOffer struct {
	ID              string
	Position        int
	FirstSegment    Segment
	LastSegment     Segment
	Origin          string
	Destination     string
	DepartureAt     string
	ArrivalAt       string
	Stops           int
	DurationMinutes int
	SourcePrice     decimal.Decimal
	SourceCurrency  string
	ConvertedPrice  decimal.Decimal
	DisplayCurrency string
	AirlineCode     string
	AirlineName     string
	Itineraries     int
}

func (o NormalizedOffer) RoundTrip() bool {
	return o.Itineraries > 1
}
