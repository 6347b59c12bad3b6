package ticket

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightoffers/internal/models"
)

func testOffer() models.NormalizedOffer {
	return models.NormalizedOffer{
		ID:              "3",
		Origin:          "DEL",
		Destination:     "BOM",
		DepartureAt:     "2025-12-15T06:10:00",
		ArrivalAt:       "2025-12-15T08:25:00",
		Stops:           0,
		DurationMinutes: 135,
		SourcePrice:     decimal.NewFromInt(100),
		SourceCurrency:  "EUR",
		ConvertedPrice:  decimal.RequireFromString("9000"),
		DisplayCurrency: "INR",
		AirlineCode:     "AI",
		AirlineName:     "Air India",
		Itineraries:     1,
	}
}

func TestGenerate(t *testing.T) {
	g := NewGeneratorWithSource(rand.NewPCG(1, 2))
	fixed := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	tk, err := g.Generate(testOffer(), "  Asha Rao ")
	require.NoError(t, err)

	assert.Len(t, tk.PNR, PNRLength)
	assert.Equal(t, "Asha Rao", tk.Passenger)
	assert.Equal(t, "Economy", tk.Class)
	assert.Equal(t, "DEL", tk.From)
	assert.Equal(t, "BOM", tk.To)
	assert.Equal(t, "2025-12-15 06:10", tk.Departure)
	assert.Equal(t, "2025-12-15 08:25", tk.Arrival)
	assert.Equal(t, models.Airline{Code: "AI", Name: "Air India"}, tk.Airline)
	assert.Equal(t, "9000.00", tk.Price.Amount)
	assert.Equal(t, "INR 9,000.00", tk.Price.Formatted)
	assert.Equal(t, fixed, tk.GeneratedAt)
}

func TestGenerate_RequiresPassenger(t *testing.T) {
	g := NewGenerator()

	_, err := g.Generate(testOffer(), "   ")
	assert.ErrorIs(t, err, ErrMissingPassenger)
}

func TestPNR_Alphabet(t *testing.T) {
	g := NewGenerator()

	for i := 0; i < 500; i++ {
		pnr := g.PNR()
		require.Len(t, pnr, PNRLength)
		for _, c := range pnr {
			assert.True(t, strings.ContainsRune(PNRAlphabet, c), "unexpected %q in %s", c, pnr)
		}
	}
}

func TestPNR_DeterministicWithSeed(t *testing.T) {
	a := NewGeneratorWithSource(rand.NewPCG(7, 7))
	b := NewGeneratorWithSource(rand.NewPCG(7, 7))

	assert.Equal(t, a.PNR(), b.PNR())
}
