package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dharmasatrya/flightoffers/internal/models"
)

const (
	DefaultAmadeusBaseURL = "https://test.api.amadeus.com"

	tokenPath  = "/v1/security/oauth2/token"
	offersPath = "/v2/shopping/flight-offers"

	// A cached token is refreshed once it is this close to expiring.
	tokenExpiryMargin = time.Minute
)

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AmadeusProvider searches the Amadeus Self-Service flight offers API using
// client-credentials authentication.
type AmadeusProvider struct {
	baseURL      string
	clientID     string
	clientSecret string
	currency     string
	httpClient   HTTPClient
	now          func() time.Time
	logger       zerolog.Logger

	mu     sync.Mutex
	token  string
	expiry time.Time
}

type AmadeusOption func(*AmadeusProvider)

func WithBaseURL(baseURL string) AmadeusOption {
	return func(p *AmadeusProvider) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(httpClient HTTPClient) AmadeusOption {
	return func(p *AmadeusProvider) {
		p.httpClient = httpClient
	}
}

// WithCurrency sets the currencyCode requested from the API.
func WithCurrency(code string) AmadeusOption {
	return func(p *AmadeusProvider) {
		p.currency = strings.ToUpper(code)
	}
}

func WithLogger(logger zerolog.Logger) AmadeusOption {
	return func(p *AmadeusProvider) {
		p.logger = logger.With().Str("component", "amadeus").Logger()
	}
}

func NewAmadeusProvider(clientID, clientSecret string, options ...AmadeusOption) (*AmadeusProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("amadeus: client id and secret are required")
	}

	p := &AmadeusProvider{
		baseURL:      DefaultAmadeusBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		currency:     "EUR",
		httpClient:   http.DefaultClient,
		now:          time.Now,
		logger:       zerolog.Nop(),
	}
	for _, option := range options {
		option(p)
	}
	return p, nil
}

func (p *AmadeusProvider) Name() string {
	return "amadeus"
}

type amadeusOffersResponse struct {
	Data []models.FlightOffer `json:"data"`
}

type amadeusTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (p *AmadeusProvider) Search(ctx context.Context, req models.SearchRequest) ([]models.FlightOffer, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, NewProviderError(p.Name(), fmt.Errorf("access token: %w", err))
	}

	query := url.Values{}
	query.Set("originLocationCode", req.Origin)
	query.Set("destinationLocationCode", req.Destination)
	query.Set("departureDate", req.DepartureDate)
	if req.ReturnDate != nil && *req.ReturnDate != "" {
		query.Set("returnDate", *req.ReturnDate)
	}
	query.Set("adults", "1")
	query.Set("nonStop", strconv.FormatBool(req.NonStop))
	if req.MaxResults > 0 {
		query.Set("max", strconv.Itoa(req.MaxResults))
	}
	if p.currency != "" {
		query.Set("currencyCode", p.currency)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+offersPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, NewProviderError(p.Name(), fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.do(httpReq)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
			p.invalidateToken()
		}
		return nil, NewProviderError(p.Name(), err)
	}
	defer resp.Body.Close()

	var body amadeusOffersResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, NewProviderError(p.Name(), fmt.Errorf("decode offers: %w", err))
	}

	p.logger.Debug().
		Str("origin", req.Origin).
		Str("destination", req.Destination).
		Int("count", len(body.Data)).
		Msg("fetched flight offers")

	return body.Data, nil
}

// accessToken returns the cached token or fetches a new one. Callers that
// arrive during a refresh wait for it instead of requesting their own.
func (p *AmadeusProvider) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.expiry.Add(-tokenExpiryMargin)) {
		return p.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body amadeusTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if body.AccessToken == "" {
		return "", errors.New("empty access token")
	}

	p.token = body.AccessToken
	p.expiry = p.now().Add(time.Duration(body.ExpiresIn) * time.Second)

	p.logger.Debug().Time("expiry", p.expiry).Msg("refreshed access token")

	return p.token, nil
}

func (p *AmadeusProvider) invalidateToken() {
	p.mu.Lock()
	p.token = ""
	p.expiry = time.Time{}
	p.mu.Unlock()
}

func (p *AmadeusProvider) do(req *http.Request) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}
