package savedsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dharmasatrya/flightoffers/internal/models"
)

const DefaultHashKey = "saved_searches"

var ErrNotFound = errors.New("saved search not found")

// SavedSearch is a route and date a user wants to run again later.
type SavedSearch struct {
	ID            string    `json:"id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate string    `json:"departure_date"`
	ReturnDate    *string   `json:"return_date,omitempty"`
	NonStop       bool      `json:"non_stop"`
	SortBy        string    `json:"sort_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromRequest copies the criteria of a validated request.
func FromRequest(req models.SearchRequest) SavedSearch {
	return SavedSearch{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		NonStop:       req.NonStop,
		SortBy:        req.SortBy,
	}
}

type Store interface {
	// List returns every saved search, newest first.
	List(ctx context.Context) ([]SavedSearch, error)
	// Save assigns an ID and creation time and stores the entry.
	Save(ctx context.Context, s SavedSearch) (SavedSearch, error)
	Delete(ctx context.Context, id string) error
}

func sortNewestFirst(list []SavedSearch) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

// RedisStore keeps saved searches as JSON values in a single hash.
type RedisStore struct {
	client *redis.Client
	key    string
	now    func() time.Time
	logger zerolog.Logger
}

func NewRedisStore(client *redis.Client, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		key:    DefaultHashKey,
		now:    time.Now,
		logger: logger.With().Str("component", "saved_search_store").Logger(),
	}
}

func (s *RedisStore) List(ctx context.Context) ([]SavedSearch, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}

	list := make([]SavedSearch, 0, len(values))
	for id, raw := range values {
		var entry SavedSearch
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			s.logger.Warn().Err(err).Str("id", id).Msg("skipping unreadable saved search")
			continue
		}
		list = append(list, entry)
	}

	sortNewestFirst(list)
	return list, nil
}

func (s *RedisStore) Save(ctx context.Context, entry SavedSearch) (SavedSearch, error) {
	entry.ID = uuid.NewString()
	entry.CreatedAt = s.now().UTC()

	data, err := json.Marshal(entry)
	if err != nil {
		return SavedSearch{}, fmt.Errorf("failed to marshal saved search: %w", err)
	}
	if err := s.client.HSet(ctx, s.key, entry.ID, data).Err(); err != nil {
		return SavedSearch{}, fmt.Errorf("failed to save search: %w", err)
	}

	s.logger.Debug().Str("id", entry.ID).Str("route", entry.Origin+"-"+entry.Destination).Msg("saved search stored")
	return entry, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	removed, err := s.client.HDel(ctx, s.key, id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete saved search: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// MemoryStore is used when Redis is disabled. Entries live for the process
// lifetime only.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]SavedSearch
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]SavedSearch),
		now:     time.Now,
	}
}

func (s *MemoryStore) List(ctx context.Context) ([]SavedSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]SavedSearch, 0, len(s.entries))
	for _, entry := range s.entries {
		list = append(list, entry)
	}
	sortNewestFirst(list)
	return list, nil
}

func (s *MemoryStore) Save(ctx context.Context, entry SavedSearch) (SavedSearch, error) {
	entry.ID = uuid.NewString()
	entry.CreatedAt = s.now().UTC()

	s.mu.Lock()
	s.entries[entry.ID] = entry
	s.mu.Unlock()

	return entry, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}
