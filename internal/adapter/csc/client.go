package csc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/location-picker/internal/config"
	"github.com/couchcryptid/location-picker/internal/domain"
	"github.com/couchcryptid/location-picker/internal/observability"
)

// APIKeyHeader carries the account key on every request.
const APIKeyHeader = "X-CSCAPI-KEY"

// Client implements domain.Directory using the countrystatecity.in REST API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a directory client from the CSC_* settings.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: cfg.CSCAPIKey,
		httpClient: &http.Client{
			Timeout: cfg.CSCTimeout,
		},
		baseURL: cfg.CSCBaseURL,
		limiter: rate.NewLimiter(rate.Limit(cfg.CSCRateLimit), cfg.CSCRateBurst),
		metrics: metrics,
		logger:  logger,
	}
}

// ListCountries returns every country the API knows about.
func (c *Client) ListCountries(ctx context.Context) ([]domain.Country, error) {
	rows, err := fetch[codeName](ctx, c, endpointCountries, "/countries")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Country, len(rows))
	for i, r := range rows {
		out[i] = domain.Country{Code: r.ISO2, Name: r.Name}
	}
	return out, nil
}

// ListStates returns the states of a country.
func (c *Client) ListStates(ctx context.Context, country string) ([]domain.State, error) {
	path := fmt.Sprintf("/countries/%s/states", url.PathEscape(country))
	rows, err := fetch[codeName](ctx, c, endpointStates, path)
	if err != nil {
		return nil, err
	}
	out := make([]domain.State, len(rows))
	for i, r := range rows {
		out[i] = domain.State{Code: r.ISO2, Name: r.Name}
	}
	return out, nil
}

// ListCities returns the cities of a state within a country.
func (c *Client) ListCities(ctx context.Context, country, state string) ([]domain.City, error) {
	path := fmt.Sprintf("/countries/%s/states/%s/cities", url.PathEscape(country), url.PathEscape(state))
	rows, err := fetch[idName](ctx, c, endpointCities, path)
	if err != nil {
		return nil, err
	}
	out := make([]domain.City, len(rows))
	for i, r := range rows {
		out[i] = domain.City{ID: r.ID, Name: r.Name}
	}
	return out, nil
}

const (
	endpointCountries = "countries"
	endpointStates    = "states"
	endpointCities    = "cities"
)

func fetch[T any](ctx context.Context, c *Client, endpoint, path string) ([]T, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
			return nil, fmt.Errorf("%s rate limit wait: %w", endpoint, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	rows, err := c.do(req, endpoint)
	c.metrics.APIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, err
	}

	var out []T
	if err := json.Unmarshal(rows, &out); err != nil {
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	if len(out) == 0 {
		c.metrics.APIRequests.WithLabelValues(endpoint, "empty").Inc()
	} else {
		c.metrics.APIRequests.WithLabelValues(endpoint, "success").Inc()
	}
	c.logger.Debug("directory request complete", "endpoint", endpoint, "path", path, "count", len(out))
	return out, nil
}

func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("csc API error: status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

// API response types. Only the key and display name are consumed.

type codeName struct {
	ISO2 string `json:"iso2"`
	Name string `json:"name"`
}

type idName struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
