package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dharmasatrya/flightoffers/internal/models"
)

func batch() []models.NormalizedOffer {
	return []models.NormalizedOffer{
		{ID: "1", Stops: 0, AirlineCode: "AI", DurationMinutes: 130, ConvertedPrice: decimal.RequireFromString("9000")},
		{ID: "2", Stops: 1, AirlineCode: "6E", DurationMinutes: 300, ConvertedPrice: decimal.RequireFromString("6500.50")},
		{ID: "3", Stops: 0, AirlineCode: "6E", DurationMinutes: 125, ConvertedPrice: decimal.RequireFromString("7200")},
		{ID: "4", Stops: 2, AirlineCode: "UK", DurationMinutes: 600, ConvertedPrice: decimal.RequireFromString("15000")},
	}
}

func ids(offers []models.NormalizedOffer) []string {
	out := make([]string, 0, len(offers))
	for _, o := range offers {
		out = append(out, o.ID)
	}
	return out
}

func TestApply_NoFilters(t *testing.T) {
	in := batch()
	got := Apply(in, false, nil)
	assert.Equal(t, ids(in), ids(got))
}

func TestApply_NonStop(t *testing.T) {
	got := Apply(batch(), true, nil)
	assert.Equal(t, []string{"1", "3"}, ids(got))
}

func TestApply_Filters(t *testing.T) {
	priceMax := 9000.0
	maxDuration := 300

	tests := []struct {
		name    string
		filters models.SearchFilters
		want    []string
	}{
		{"price max inclusive", models.SearchFilters{PriceMax: &priceMax}, []string{"1", "2", "3"}},
		{"airlines case insensitive", models.SearchFilters{Airlines: []string{"6e"}}, []string{"2", "3"}},
		{"max duration", models.SearchFilters{MaxDuration: &maxDuration}, []string{"1", "2", "3"}},
		{"combined", models.SearchFilters{PriceMax: &priceMax, Airlines: []string{"AI", "UK"}}, []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.filters
			assert.Equal(t, tt.want, ids(Apply(batch(), false, &f)))
		})
	}
}

func TestApply_Empty(t *testing.T) {
	got := Apply(nil, true, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLimit(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, ids(Limit(batch(), 2)))
	assert.Len(t, Limit(batch(), 10), 4)
	assert.Len(t, Limit(batch(), 0), 4)
}
