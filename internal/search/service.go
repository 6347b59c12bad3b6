package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dharmasatrya/flightoffers/internal/cache"
	"github.com/dharmasatrya/flightoffers/internal/events"
	"github.com/dharmasatrya/flightoffers/internal/filter"
	"github.com/dharmasatrya/flightoffers/internal/metrics"
	"github.com/dharmasatrya/flightoffers/internal/models"
	"github.com/dharmasatrya/flightoffers/internal/normalizer"
	"github.com/dharmasatrya/flightoffers/internal/providers"
	"github.com/dharmasatrya/flightoffers/internal/ranking"
	"github.com/dharmasatrya/flightoffers/internal/ratelimit"
)

type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	RetryDelays []time.Duration
	RateLimiter *ratelimit.Limiter
}

// DefaultConfig fills a zero Timeout and nil RetryDelays in NewService.
func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		MaxRetries: 2,
		RetryDelays: []time.Duration{
			200 * time.Millisecond,
			500 * time.Millisecond,
		},
	}
}

// Service runs one search end to end: fetch (or reuse) the raw batch,
// normalize, filter, rank and cap.
type Service struct {
	provider   providers.Provider
	normalizer *normalizer.Normalizer
	cache      cache.Cache
	publisher  events.Publisher
	metrics    *metrics.Metrics
	config     Config
	logger     zerolog.Logger
	now        func() time.Time
}

type Result struct {
	Offers    []models.NormalizedOffer
	Provider  string
	RawOffers int
	Skipped   []normalizer.Skipped
	CacheHit  bool
	Elapsed   time.Duration
}

func NewService(
	provider providers.Provider,
	norm *normalizer.Normalizer,
	offerCache cache.Cache,
	publisher events.Publisher,
	m *metrics.Metrics,
	config Config,
	logger zerolog.Logger,
) *Service {
	if offerCache == nil {
		offerCache = cache.NewNoOpCache()
	}
	if publisher == nil {
		publisher = events.NewNoOpPublisher()
	}
	defaults := DefaultConfig()
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RetryDelays == nil {
		config.RetryDelays = defaults.RetryDelays
	}
	return &Service{
		provider:   provider,
		normalizer: norm,
		cache:      offerCache,
		publisher:  publisher,
		metrics:    m,
		config:     config,
		logger:     logger.With().Str("component", "search_service").Logger(),
		now:        time.Now,
	}
}

// Search expects criteria that already passed SearchRequest.Validate. An
// unknown sort policy is rejected before any upstream call.
func (s *Service) Search(ctx context.Context, req models.SearchRequest) (*Result, error) {
	start := s.now()

	policy, err := ranking.ParsePolicy(req.SortBy)
	if err != nil {
		return nil, err
	}

	result := &Result{Provider: s.provider.Name()}

	raws, found := s.cache.Get(ctx, req)
	if found {
		result.CacheHit = true
		s.logger.Debug().
			Str("origin", req.Origin).
			Str("destination", req.Destination).
			Int("offers", len(raws)).
			Msg("cache hit for raw offers")
	} else {
		raws, err = s.fetch(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, req, raws); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache raw offers")
		}
	}

	batch := s.normalizer.NormalizeBatch(raws)
	offers := filter.Apply(batch.Offers, req.NonStop, req.Filters)
	offers = ranking.Rank(offers, policy)
	offers = filter.Limit(offers, req.MaxResults)

	result.Offers = offers
	result.RawOffers = len(raws)
	result.Skipped = batch.Skipped
	result.Elapsed = s.now().Sub(start)

	if s.metrics != nil {
		s.metrics.AddSkipped(result.Provider, len(batch.Skipped))
		s.metrics.ObserveSearch(string(policy), result.CacheHit, len(offers))
	}
	s.publish(ctx, req, policy, result)

	return result, nil
}

func (s *Service) fetch(ctx context.Context, req models.SearchRequest) ([]models.FlightOffer, error) {
	name := s.provider.Name()

	fetchCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	if s.config.RateLimiter != nil {
		if err := s.config.RateLimiter.Wait(fetchCtx, name); err != nil {
			return nil, providers.NewProviderError(name, fmt.Errorf("rate limit wait: %w", err))
		}
	}

	started := s.now()
	offers, err := s.searchWithRetry(fetchCtx, req)
	if s.metrics != nil {
		s.metrics.ObserveUpstream(name, err, s.now().Sub(started))
	}
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("provider", name).
			Str("origin", req.Origin).
			Str("destination", req.Destination).
			Msg("upstream search failed")
		var providerErr *providers.ProviderError
		if errors.As(err, &providerErr) {
			return nil, err
		}
		return nil, providers.NewProviderError(name, err)
	}

	return offers, nil
}

// searchWithRetry retries only failures providers.IsRetryable accepts,
// waiting RetryDelays between attempts (the last delay repeats).
func (s *Service) searchWithRetry(ctx context.Context, req models.SearchRequest) ([]models.FlightOffer, error) {
	var lastErr error

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, ctx.Err()
		default:
		}

		if attempt > 0 && len(s.config.RetryDelays) > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(s.config.RetryDelays) {
				delayIdx = len(s.config.RetryDelays) - 1
			}

			select {
			case <-time.After(s.config.RetryDelays[delayIdx]):
			case <-ctx.Done():
				return nil, lastErr
			}
		}

		offers, err := s.provider.Search(ctx, req)
		if err == nil {
			return offers, nil
		}

		lastErr = err
		if !providers.IsRetryable(err) {
			return nil, err
		}
		s.logger.Warn().
			Err(err).
			Str("provider", s.provider.Name()).
			Int("attempt", attempt+1).
			Msg("upstream attempt failed")
	}

	return nil, lastErr
}

func (s *Service) publish(ctx context.Context, req models.SearchRequest, policy ranking.Policy, result *Result) {
	event := events.SearchEvent{
		ID:            uuid.New(),
		Provider:      result.Provider,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		NonStop:       req.NonStop,
		SortBy:        string(policy),
		RawOffers:     result.RawOffers,
		SkippedOffers: len(result.Skipped),
		Results:       len(result.Offers),
		CacheHit:      result.CacheHit,
		OccurredAt:    s.now().UTC(),
	}
	if lowest, code, ok := lowestPrice(result.Offers); ok {
		event.LowestPrice = lowest.StringFixed(2)
		event.PriceCurrency = code
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event_id", event.ID.String()).Msg("failed to publish search event")
	}
}

func lowestPrice(offers []models.NormalizedOffer) (decimal.Decimal, string, bool) {
	if len(offers) == 0 {
		return decimal.Zero, "", false
	}
	lowest := offers[0]
	for _, o := range offers[1:] {
		if o.ConvertedPrice.LessThan(lowest.ConvertedPrice) {
			lowest = o
		}
	}
	return lowest.ConvertedPrice, lowest.DisplayCurrency, true
}
