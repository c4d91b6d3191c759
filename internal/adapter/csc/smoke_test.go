//go:build csc

package csc

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/location-picker/internal/domain"
	"github.com/couchcryptid/location-picker/internal/observability"
)

// These tests hit the real countrystatecity.in API and require CSC_API_KEY.
// Run with: go test -tags=csc ./internal/adapter/csc/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("CSC_API_KEY")
	if key == "" {
		t.Fatal("CSC_API_KEY must be set to run smoke tests")
	}
	return &Client{
		apiKey:     key,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.countrystatecity.in/v1",
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_Cascade(t *testing.T) {
	c := smokeClient(t)
	ctx := context.Background()

	countries, err := c.ListCountries(ctx)
	require.NoError(t, err)
	us, ok := domain.FindCountry(countries, "US")
	require.True(t, ok)
	assert.Equal(t, "United States", us.Name)

	states, err := c.ListStates(ctx, "US")
	require.NoError(t, err)
	_, ok = domain.FindState(states, "CA")
	require.True(t, ok)

	cities, err := c.ListCities(ctx, "US", "CA")
	require.NoError(t, err)
	assert.NotEmpty(t, cities)
}

func TestSmoke_CachedDirectory(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedDirectory(c, 10, time.Hour, clockwork.NewRealClock(), observability.NewMetricsForTesting())

	r1, err := cached.ListStates(context.Background(), "MX")
	require.NoError(t, err)
	r2, err := cached.ListStates(context.Background(), "MX")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
