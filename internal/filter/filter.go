package filter

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dharmasatrya/flightoffers/internal/models"
)

// Apply keeps the offers matching the non-stop flag and the optional filters.
// The result is a new slice in input order.
func Apply(offers []models.NormalizedOffer, nonStop bool, filters *models.SearchFilters) []models.NormalizedOffer {
	result := make([]models.NormalizedOffer, 0, len(offers))

	for _, o := range offers {
		if nonStop && o.Stops > 0 {
			continue
		}
		if filters != nil && !matchesFilters(o, filters) {
			continue
		}
		result = append(result, o)
	}

	return result
}

func matchesFilters(o models.NormalizedOffer, filters *models.SearchFilters) bool {
	if filters.PriceMax != nil && o.ConvertedPrice.GreaterThan(decimal.NewFromFloat(*filters.PriceMax)) {
		return false
	}

	if len(filters.Airlines) > 0 {
		found := false
		for _, code := range filters.Airlines {
			if strings.EqualFold(o.AirlineCode, code) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filters.MaxDuration != nil && o.DurationMinutes > *filters.MaxDuration {
		return false
	}

	return true
}

// Limit returns at most n offers. n <= 0 means no cap.
func Limit(offers []models.NormalizedOffer, n int) []models.NormalizedOffer {
	if n <= 0 || len(offers) <= n {
		return offers
	}
	return offers[:n]
}
