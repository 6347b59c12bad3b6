package providers

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"github.com/dharmasatrya/flightoffers/internal/models"
	"github.com/dharmasatrya/flightoffers/internal/providers/data"
)

type sampleResponse struct {
	Data []models.FlightOffer `json:"data"`
}

// SampleProvider serves embedded fixture offers for local runs without
// upstream credentials. Offers match on route only; dates are ignored.
type SampleProvider struct {
	offers []models.FlightOffer
}

func NewSampleProvider() (*SampleProvider, error) {
	return NewSampleProviderFromJSON(data.SampleOffers)
}

func NewSampleProviderFromJSON(raw []byte) (*SampleProvider, error) {
	var resp sampleResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &SampleProvider{offers: resp.Data}, nil
}

func (p *SampleProvider) Name() string {
	return "sample"
}

func (p *SampleProvider) Search(ctx context.Context, req models.SearchRequest) ([]models.FlightOffer, error) {
	delay := time.Duration(50+rand.Intn(50)) * time.Millisecond
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	results := make([]models.FlightOffer, 0)
	for _, o := range p.offers {
		if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
			continue
		}
		segments := o.Itineraries[0].Segments
		if !strings.EqualFold(segments[0].Departure.IATACode, req.Origin) ||
			!strings.EqualFold(segments[len(segments)-1].Arrival.IATACode, req.Destination) {
			continue
		}
		if req.NonStop && len(segments) > 1 {
			continue
		}

		results = append(results, o)
		if req.MaxResults > 0 && len(results) == req.MaxResults {
			break
		}
	}

	return results, nil
}
