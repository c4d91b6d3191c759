package csc

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/location-picker/internal/config"
	"github.com/couchcryptid/location-picker/internal/domain"
	"github.com/couchcryptid/location-picker/internal/observability"
)

const (
	testAPIKey        = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		apiKey:     testAPIKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func jsonHandler(t *testing.T, wantPath, body string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, wantPath, r.URL.EscapedPath())
		assert.Equal(t, testAPIKey, r.Header.Get(APIKeyHeader))
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(body))
	}
}

func TestClient_ListCountries_Success(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/countries",
		`[{"id":233,"iso2":"US","iso3":"USA","name":"United States","phonecode":"1"},{"id":39,"iso2":"CA","name":"Canada"}]`))
	defer srv.Close()

	c := testClient(srv.URL)
	countries, err := c.ListCountries(context.Background())
	require.NoError(t, err)

	want := []domain.Country{
		{Code: "US", Name: "United States"},
		{Code: "CA", Name: "Canada"},
	}
	if diff := cmp.Diff(want, countries); diff != "" {
		t.Errorf("countries mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.APIRequests.WithLabelValues("countries", "success")))
}

func TestClient_ListStates_Success(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/countries/US/states",
		`[{"id":1416,"iso2":"CA","name":"California"},{"id":1407,"iso2":"TX","name":"Texas"}]`))
	defer srv.Close()

	c := testClient(srv.URL)
	states, err := c.ListStates(context.Background(), "US")
	require.NoError(t, err)

	want := []domain.State{{Code: "CA", Name: "California"}, {Code: "TX", Name: "Texas"}}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Errorf("states mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_ListCities_Success(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/countries/US/states/CA/cities",
		`[{"id":1,"name":"Los Angeles"},{"id":2,"name":"San Diego"}]`))
	defer srv.Close()

	c := testClient(srv.URL)
	cities, err := c.ListCities(context.Background(), "US", "CA")
	require.NoError(t, err)

	want := []domain.City{{ID: 1, Name: "Los Angeles"}, {ID: 2, Name: "San Diego"}}
	if diff := cmp.Diff(want, cities); diff != "" {
		t.Errorf("cities mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_EscapesPathSegments(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/countries/U%2FS/states", `[]`))
	defer srv.Close()

	c := testClient(srv.URL)
	states, err := c.ListStates(context.Background(), "U/S")
	require.NoError(t, err)
	assert.Empty(t, states)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.APIRequests.WithLabelValues("states", "empty")))
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized. You shouldn't be here."}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.ListCountries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.APIRequests.WithLabelValues("countries", "error")))
}

func TestClient_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.ListCities(context.Background(), "US", "CA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode cities response")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.ListCountries(context.Background())
	require.Error(t, err)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/countries", `[]`))
	defer srv.Close()

	c := testClient(srv.URL)
	c.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	_, err := c.ListCountries(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.ListCountries(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestNewClient_FromConfig(t *testing.T) {
	cfg := &config.Config{
		CSCAPIKey:    testAPIKey,
		CSCBaseURL:   "http://example.invalid/v1",
		CSCTimeout:   3 * time.Second,
		CSCRateLimit: 2,
		CSCRateBurst: 4,
	}
	c := NewClient(cfg, observability.NewMetricsForTesting(), slog.Default())

	assert.Equal(t, testAPIKey, c.apiKey)
	assert.Equal(t, "http://example.invalid/v1", c.baseURL)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
	assert.Equal(t, rate.Limit(2), c.limiter.Limit())
	assert.Equal(t, 4, c.limiter.Burst())
}
