package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightoffers/internal/models"
)

type fakeAmadeus struct {
	server       *httptest.Server
	tokenCalls   atomic.Int32
	searchCalls  atomic.Int32
	expiresIn    int
	searchStatus atomic.Int32
	lastQuery    atomic.Value
}

func newFakeAmadeus(t *testing.T) *fakeAmadeus {
	f := &fakeAmadeus{expiresIn: 1799}
	f.searchStatus.Store(http.StatusOK)

	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "id", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret", r.PostForm.Get("client_secret"))

		n := f.tokenCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-" + string(rune('0'+n)),
			"expires_in":   f.expiresIn,
		})
	})
	mux.HandleFunc(offersPath, func(w http.ResponseWriter, r *http.Request) {
		f.searchCalls.Add(1)
		f.lastQuery.Store(r.URL.Query())

		if status := int(f.searchStatus.Load()); status != http.StatusOK {
			http.Error(w, `{"errors":[{"detail":"nope"}]}`, status)
			return
		}
		assert.Contains(t, r.Header.Get("Authorization"), "Bearer token-")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []models.FlightOffer{{ID: "1"}, {ID: "2"}},
		})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func newTestAmadeus(t *testing.T, f *fakeAmadeus) *AmadeusProvider {
	p, err := NewAmadeusProvider("id", "secret",
		WithBaseURL(f.server.URL+"/"),
		WithHTTPClient(f.server.Client()),
	)
	require.NoError(t, err)
	return p
}

func request() models.SearchRequest {
	ret := "2025-12-20"
	return models.SearchRequest{
		Origin:        "DEL",
		Destination:   "BOM",
		DepartureDate: "2025-12-15",
		ReturnDate:    &ret,
		Adults:        1,
		NonStop:       true,
		MaxResults:    20,
	}
}

func TestNewAmadeusProvider_RequiresCredentials(t *testing.T) {
	_, err := NewAmadeusProvider("", "secret")
	assert.Error(t, err)
	_, err = NewAmadeusProvider("id", "")
	assert.Error(t, err)
}

func TestAmadeusSearch_SendsQuery(t *testing.T) {
	f := newFakeAmadeus(t)
	p := newTestAmadeus(t, f)

	offers, err := p.Search(context.Background(), request())
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, "1", offers[0].ID)

	q := f.lastQuery.Load().(url.Values)
	assert.Equal(t, []string{"DEL"}, q["originLocationCode"])
	assert.Equal(t, []string{"BOM"}, q["destinationLocationCode"])
	assert.Equal(t, []string{"2025-12-15"}, q["departureDate"])
	assert.Equal(t, []string{"2025-12-20"}, q["returnDate"])
	assert.Equal(t, []string{"1"}, q["adults"])
	assert.Equal(t, []string{"true"}, q["nonStop"])
	assert.Equal(t, []string{"20"}, q["max"])
	assert.Equal(t, []string{"EUR"}, q["currencyCode"])
}

func TestAmadeusSearch_ReusesTokenUntilNearExpiry(t *testing.T) {
	f := newFakeAmadeus(t)
	p := newTestAmadeus(t, f)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := p.Search(context.Background(), request())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.tokenCalls.Load())

	// Inside the refresh margin.
	now = now.Add(time.Duration(f.expiresIn)*time.Second - 30*time.Second)
	_, err := p.Search(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.tokenCalls.Load())
	assert.Equal(t, int32(4), f.searchCalls.Load())
}

func TestAmadeusSearch_StatusError(t *testing.T) {
	f := newFakeAmadeus(t)
	p := newTestAmadeus(t, f)
	f.searchStatus.Store(http.StatusServiceUnavailable)

	_, err := p.Search(context.Background(), request())
	require.Error(t, err)

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "amadeus", pe.Provider)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.True(t, IsRetryable(err))
}

func TestAmadeusSearch_UnauthorizedDropsToken(t *testing.T) {
	f := newFakeAmadeus(t)
	p := newTestAmadeus(t, f)

	_, err := p.Search(context.Background(), request())
	require.NoError(t, err)

	f.searchStatus.Store(http.StatusUnauthorized)
	_, err = p.Search(context.Background(), request())
	require.Error(t, err)
	assert.False(t, IsRetryable(err))

	f.searchStatus.Store(http.StatusOK)
	_, err = p.Search(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestAmadeusSearch_TokenFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_client", http.StatusUnauthorized)
	}))
	defer server.Close()

	p, err := NewAmadeusProvider("id", "secret", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = p.Search(context.Background(), request())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token")
}
