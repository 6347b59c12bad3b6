package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dharmasatrya/flightoffers/internal/models"
)

//go:generate mockgen -destination=../mocks/mock_cache.go -package=mocks . Cache

// Cache stores raw upstream offer batches. Sorting and filters are not part
// of the key, so re-ranking a search reuses the batch already fetched.
type Cache interface {
	Get(ctx context.Context, req models.SearchRequest) ([]models.FlightOffer, bool)
	Set(ctx context.Context, req models.SearchRequest, offers []models.FlightOffer) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "offer_cache").Logger(),
	}
}

func (c *RedisCache) Get(ctx context.Context, req models.SearchRequest) ([]models.FlightOffer, bool) {
	key := GenerateKey(req)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return nil, false
	}

	var offers []models.FlightOffer
	if err := json.Unmarshal(data, &offers); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
		return nil, false
	}

	return offers, true
}

func (c *RedisCache) Set(ctx context.Context, req models.SearchRequest, offers []models.FlightOffer) error {
	key := GenerateKey(req)

	data, err := json.Marshal(offers)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return err
	}

	c.logger.Debug().Str("key", key).Int("count", len(offers)).Dur("ttl", c.ttl).Msg("cached offers")
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, req models.SearchRequest) ([]models.FlightOffer, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, req models.SearchRequest, offers []models.FlightOffer) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// GenerateKey hashes the fetch-relevant criteria.
func GenerateKey(req models.SearchRequest) string {
	keyData := struct {
		Origin        string
		Destination   string
		DepartureDate string
		ReturnDate    string
		Adults        int
		NonStop       bool
		MaxResults    int
	}{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		Adults:        req.Adults,
		NonStop:       req.NonStop,
		MaxResults:    req.MaxResults,
	}

	if req.ReturnDate != nil {
		keyData.ReturnDate = *req.ReturnDate
	}

	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return "offers:" + hex.EncodeToString(hash[:])
}
