package normalizer

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/flightoffers/internal/models"
	"github.com/dharmasatrya/flightoffers/internal/timestamp"
	"github.com/dharmasatrya/flightoffers/pkg/currency"
)

type AirlineDirectory interface {
	Name(code string) string
}

type Config struct {
	Rates    currency.RateSource
	Airlines AirlineDirectory
	// Workers bounds the parallel map over a batch. Zero means GOMAXPROCS.
	Workers int
}

// Normalizer turns raw provider offers into models.NormalizedOffer values.
type Normalizer struct {
	rates    currency.RateSource
	airlines AirlineDirectory
	workers  int
	logger   zerolog.Logger
}

func NewNormalizer(cfg Config, logger zerolog.Logger) *Normalizer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Normalizer{
		rates:    cfg.Rates,
		airlines: cfg.Airlines,
		workers:  workers,
		logger:   logger.With().Str("component", "normalizer").Logger(),
	}
}

// Normalize validates one raw offer and derives its canonical view. Stops and
// duration come from the first itinerary only; return legs are not counted.
// Every failure wraps models.ErrMalformedOffer.
func (n *Normalizer) Normalize(raw models.FlightOffer) (models.NormalizedOffer, error) {
	if len(raw.Itineraries) == 0 {
		return models.NormalizedOffer{}, malformed(raw.ID, "no itineraries")
	}
	for i, it := range raw.Itineraries {
		if err := checkItinerary(it); err != nil {
			return models.NormalizedOffer{}, fmt.Errorf("%w: offer %q: itinerary %d: %w", models.ErrMalformedOffer, raw.ID, i, err)
		}
	}
	if raw.Price == nil {
		return models.NormalizedOffer{}, malformed(raw.ID, "missing price")
	}

	outbound := raw.Itineraries[0]
	first := outbound.Segments[0]
	last := outbound.Segments[len(outbound.Segments)-1]

	duration, err := timestamp.MinutesBetween(first.Departure.At, last.Arrival.At)
	if err != nil {
		return models.NormalizedOffer{}, fmt.Errorf("%w: offer %q: %w", models.ErrMalformedOffer, raw.ID, err)
	}

	source, err := currency.ParseAmount(raw.Price.GrandTotal)
	if err != nil {
		return models.NormalizedOffer{}, fmt.Errorf("%w: offer %q: grandTotal %q: %w", models.ErrMalformedOffer, raw.ID, raw.Price.GrandTotal, err)
	}
	rate, err := n.rates.Rate(raw.Price.Currency)
	if err != nil {
		return models.NormalizedOffer{}, fmt.Errorf("%w: offer %q: currency %q: %w", models.ErrMalformedOffer, raw.ID, raw.Price.Currency, err)
	}
	converted, err := currency.Convert(source, rate)
	if err != nil {
		return models.NormalizedOffer{}, fmt.Errorf("%w: offer %q: %w", models.ErrMalformedOffer, raw.ID, err)
	}

	code := airlineCode(raw)

	return models.NormalizedOffer{
		ID:              raw.ID,
		FirstSegment:    first,
		LastSegment:     last,
		Origin:          first.Departure.IATACode,
		Destination:     last.Arrival.IATACode,
		DepartureAt:     first.Departure.At,
		ArrivalAt:       last.Arrival.At,
		Stops:           len(outbound.Segments) - 1,
		DurationMinutes: duration,
		SourcePrice:     source,
		SourceCurrency:  raw.Price.Currency,
		ConvertedPrice:  converted,
		DisplayCurrency: n.rates.Display(),
		AirlineCode:     code,
		AirlineName:     n.airlines.Name(code),
		Itineraries:     len(raw.Itineraries),
	}, nil
}

// Skipped records a raw offer that was dropped from a batch.
type Skipped struct {
	Index   int
	OfferID string
	Err     error
}

type BatchResult struct {
	Offers  []models.NormalizedOffer
	Skipped []Skipped
}

// NormalizeBatch normalizes every offer in parallel and returns the survivors
// in fetch order. Malformed offers are logged and reported, never fatal.
func (n *Normalizer) NormalizeBatch(raws []models.FlightOffer) BatchResult {
	results := make([]models.NormalizedOffer, len(raws))
	errs := make([]error, len(raws))

	var g errgroup.Group
	g.SetLimit(n.workers)
	for i := range raws {
		g.Go(func() error {
			results[i], errs[i] = n.Normalize(raws[i])
			return nil
		})
	}
	_ = g.Wait()

	batch := BatchResult{Offers: make([]models.NormalizedOffer, 0, len(raws))}
	for i := range raws {
		if errs[i] != nil {
			n.logger.Warn().
				Err(errs[i]).
				Str("offer_id", raws[i].ID).
				Int("index", i).
				Msg("skipping malformed offer")
			batch.Skipped = append(batch.Skipped, Skipped{Index: i, OfferID: raws[i].ID, Err: errs[i]})
			continue
		}
		offer := results[i]
		offer.Position = i
		batch.Offers = append(batch.Offers, offer)
	}

	n.logger.Debug().
		Int("input_count", len(raws)).
		Int("output_count", len(batch.Offers)).
		Int("skipped_count", len(batch.Skipped)).
		Msg("batch normalization complete")

	return batch
}

// checkItinerary requires at least one segment and that each segment departs
// no earlier than the previous one arrives.
func checkItinerary(it models.Itinerary) error {
	if len(it.Segments) == 0 {
		return errors.New("no segments")
	}
	for i := 1; i < len(it.Segments); i++ {
		arrived, err := timestamp.Parse(it.Segments[i-1].Arrival.At)
		if err != nil {
			return fmt.Errorf("segment %d arrival: %w", i-1, err)
		}
		departs, err := timestamp.Parse(it.Segments[i].Departure.At)
		if err != nil {
			return fmt.Errorf("segment %d departure: %w", i, err)
		}
		if departs.Before(arrived) {
			return fmt.Errorf("segment %d departs before segment %d arrives", i, i-1)
		}
	}
	return nil
}

func airlineCode(raw models.FlightOffer) string {
	if code := raw.Itineraries[0].Segments[0].CarrierCode; code != "" {
		return code
	}
	if len(raw.ValidatingAirlineCodes) > 0 {
		return raw.ValidatingAirlineCodes[0]
	}
	return ""
}

func malformed(id, reason string) error {
	return fmt.Errorf("%w: offer %q: %s", models.ErrMalformedOffer, id, reason)
}
