package ranking

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dharmasatrya/flightoffers/internal/models"
)

type Policy string

const (
	Cheapest Policy = "cheapest"
	Fastest  Policy = "fastest"
	Earliest Policy = "earliest"
)

var ErrUnknownPolicy = errors.New("unknown ranking policy")

// ParsePolicy maps a sort_by value to a Policy. The empty string selects
// Cheapest.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", Cheapest:
		return Cheapest, nil
	case Fastest:
		return Fastest, nil
	case Earliest:
		return Earliest, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Rank returns a new slice ordered by policy. The input is never modified and
// equal keys keep their input order, so re-ranking the same batch is
// deterministic.
//
// Earliest compares departure timestamps as strings. This only orders
// correctly while every timestamp shares one zero-padded layout.
func Rank(offers []models.NormalizedOffer, policy Policy) []models.NormalizedOffer {
	ranked := make([]models.NormalizedOffer, len(offers))
	copy(ranked, offers)

	if len(ranked) < 2 {
		return ranked
	}

	less := lessFunc(policy)
	if less == nil {
		return ranked
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})

	return ranked
}

func lessFunc(policy Policy) func(a, b models.NormalizedOffer) bool {
	switch policy {
	case Cheapest:
		return func(a, b models.NormalizedOffer) bool {
			return a.ConvertedPrice.LessThan(b.ConvertedPrice)
		}
	case Fastest:
		return func(a, b models.NormalizedOffer) bool {
			return a.DurationMinutes < b.DurationMinutes
		}
	case Earliest:
		return func(a, b models.NormalizedOffer) bool {
			return a.DepartureAt < b.DepartureAt
		}
	}
	return nil
}
