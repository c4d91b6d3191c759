package cascade

import (
	"context"
	"log/slog"
	"sync"

	"github.com/couchcryptid/location-picker/internal/domain"
	"github.com/couchcryptid/location-picker/internal/observability"
)

// Selector runs a State with fetches on background goroutines. Every method
// returns without waiting for the network. Safe for concurrent use.
type Selector struct {
	dir     domain.Directory
	sink    domain.SelectionSink
	source  string
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	state   State
	cancels [3]context.CancelFunc
	updates chan Snapshot

	wg sync.WaitGroup
}

// NewSelector creates a Selector over dir. sink may be nil; source tags
// published selection events.
func NewSelector(dir domain.Directory, sink domain.SelectionSink, source string, logger *slog.Logger, metrics *observability.Metrics) *Selector {
	return &Selector{
		dir:     dir,
		sink:    sink,
		source:  source,
		logger:  logger,
		metrics: metrics,
		updates: make(chan Snapshot, 1),
	}
}

// Updates delivers the latest snapshot after every change. Only the most
// recent undelivered snapshot is kept.
func (s *Selector) Updates() <-chan Snapshot { return s.updates }

// Snapshot returns the current view.
func (s *Selector) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

// Initialize starts loading the country list.
func (s *Selector) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked(ctx, s.state.Initialize())
}

// SelectCountry chooses a country and starts loading its states.
func (s *Selector) SelectCountry(ctx context.Context, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked(ctx, s.state.SelectCountry(code))
}

// SelectState chooses a state and starts loading its cities.
func (s *Selector) SelectState(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, err := s.state.SelectState(code)
	if err != nil {
		return err
	}
	s.startLocked(ctx, req)
	return nil
}

// SelectCity chooses a city. The completed selection is published to the
// sink in the background.
func (s *Selector) SelectCity(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.state.SelectCity(id); err != nil {
		return err
	}
	s.notifyLocked()

	event, ok := s.state.SelectionEvent(s.source)
	if !ok || s.sink == nil {
		return nil
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		Publish(context.WithoutCancel(ctx), s.sink, event, s.logger, s.metrics)
	}()
	return nil
}

// Wait blocks until every fetch and publish started so far has finished.
func (s *Selector) Wait() { s.wg.Wait() }

// startLocked cancels fetches the request supersedes and starts a new one.
// Dependent lists were already invalidated by the State transition.
func (s *Selector) startLocked(ctx context.Context, req Request) {
	for l := req.List; l <= Cities; l++ {
		if s.cancels[l] != nil {
			s.cancels[l]()
			s.cancels[l] = nil
		}
	}
	s.notifyLocked()

	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancels[req.List] = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.complete(Fetch(fetchCtx, s.dir, req))
	}()
}

func (s *Selector) complete(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := s.state.Complete(res)
	Report(s.logger, s.metrics, res, applied)
	if applied {
		s.notifyLocked()
	}
}

// notifyLocked replaces any undelivered snapshot with the current one.
func (s *Selector) notifyLocked() {
	snap := s.state.Snapshot()
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- snap:
	default:
	}
}

// Publish sends event to sink, logging and counting the outcome. A nil sink
// is a no-op.
func Publish(ctx context.Context, sink domain.SelectionSink, event domain.SelectionEvent, logger *slog.Logger, metrics *observability.Metrics) {
	if sink == nil {
		return
	}
	if err := sink.Publish(ctx, event); err != nil {
		metrics.SelectionPublishFailures.Inc()
		logger.Warn("publish selection failed", "event_id", event.ID, "error", err)
		return
	}
	metrics.SelectionsPublished.Inc()
	logger.Info("selection published",
		"event_id", event.ID,
		"country", event.Country,
		"state", event.State,
		"city_id", event.CityID,
		"source", event.Source,
	)
}
