package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/location-picker/internal/cascade"
	"github.com/couchcryptid/location-picker/internal/domain"
	"github.com/couchcryptid/location-picker/internal/observability"
)

// publishTimeout bounds a background selection publish, retries included.
const publishTimeout = 30 * time.Second

// Server exposes the picker page, the directory proxy API, and health,
// readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dir        domain.Directory
	sink       domain.SelectionSink
	metrics    *observability.Metrics
	logger     *slog.Logger

	publishes sync.WaitGroup
}

// NewServer creates the HTTP server. sink may be nil.
func NewServer(addr string, dir domain.Directory, ready sharedobs.ReadinessChecker, sink domain.SelectionSink, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dir:     dir,
		sink:    sink,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/countries", s.handleCountries)
	mux.HandleFunc("GET /api/countries/{country}/states", s.handleStates)
	mux.HandleFunc("GET /api/countries/{country}/states/{state}/cities", s.handleCities)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections, then waits for background
// publishes, all within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.publishes.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("selection publishes still in flight at shutdown")
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

// publishAsync sends event to the sink off the request path. The publish
// outlives the request but not publishTimeout.
func (s *Server) publishAsync(ctx context.Context, event domain.SelectionEvent) {
	if s.sink == nil {
		return
	}
	s.publishes.Add(1)
	go func() {
		defer s.publishes.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		cascade.Publish(ctx, s.sink, event, s.logger, s.metrics)
	}()
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
