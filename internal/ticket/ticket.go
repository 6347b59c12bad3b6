// Package ticket builds demo e-tickets for a chosen offer. Nothing is booked.
package ticket

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/dharmasatrya/flightoffers/internal/models"
	"github.com/dharmasatrya/flightoffers/internal/timestamp"
	"github.com/dharmasatrya/flightoffers/pkg/currency"
)

const (
	// PNRAlphabet omits characters that are easy to misread (0, O, 1, I, L).
	PNRAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	PNRLength   = 6
	Class       = "Economy"
)

var ErrMissingPassenger = errors.New("passenger name is required")

type Ticket struct {
	PNR         string         `json:"pnr"`
	Passenger   string         `json:"passenger"`
	Class       string         `json:"class"`
	OfferID     string         `json:"offer_id"`
	From        string         `json:"from"`
	To          string         `json:"to"`
	Departure   string         `json:"departure"`
	Arrival     string         `json:"arrival"`
	Stops       int            `json:"stops"`
	Airline     models.Airline `json:"airline"`
	Price       models.Money   `json:"price"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Generator issues tickets. Its random source is guarded so one Generator can
// serve concurrent requests.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewGenerator() *Generator {
	return NewGeneratorWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func NewGeneratorWithSource(src rand.Source) *Generator {
	return &Generator{
		rng: rand.New(src),
		now: time.Now,
	}
}

func (g *Generator) PNR() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.Grow(PNRLength)
	for i := 0; i < PNRLength; i++ {
		b.WriteByte(PNRAlphabet[g.rng.IntN(len(PNRAlphabet))])
	}
	return b.String()
}

func (g *Generator) Generate(offer models.NormalizedOffer, passenger string) (Ticket, error) {
	passenger = strings.TrimSpace(passenger)
	if passenger == "" {
		return Ticket{}, ErrMissingPassenger
	}

	return Ticket{
		PNR:       g.PNR(),
		Passenger: passenger,
		Class:     Class,
		OfferID:   offer.ID,
		From:      offer.Origin,
		To:        offer.Destination,
		Departure: timestamp.Display(offer.DepartureAt),
		Arrival:   timestamp.Display(offer.ArrivalAt),
		Stops:     offer.Stops,
		Airline: models.Airline{
			Code: offer.AirlineCode,
			Name: offer.AirlineName,
		},
		Price: models.Money{
			Amount:    offer.ConvertedPrice.StringFixed(2),
			Currency:  offer.DisplayCurrency,
			Formatted: currency.Format(offer.ConvertedPrice, offer.DisplayCurrency),
		},
		GeneratedAt: g.now().UTC(),
	}, nil
}
