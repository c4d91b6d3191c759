package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/location-picker/internal/domain"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// RetryingSink retries failed publishes with capped exponential backoff:
// 200ms, doubling, at most 5s between attempts.
type RetryingSink struct {
	sink     domain.SelectionSink
	attempts int
	logger   *slog.Logger
}

// NewRetryingSink wraps sink. attempts below 1 are treated as 1.
func NewRetryingSink(sink domain.SelectionSink, attempts int, logger *slog.Logger) *RetryingSink {
	return &RetryingSink{sink: sink, attempts: max(attempts, 1), logger: logger}
}

// Publish tries up to the configured number of attempts. It stops early when
// ctx is done and returns the last publish error.
func (r *RetryingSink) Publish(ctx context.Context, event domain.SelectionEvent) error {
	backoff := initialBackoff
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err = r.sink.Publish(ctx, event); err == nil {
			return nil
		}
		if attempt == r.attempts || ctx.Err() != nil {
			break
		}
		r.logger.Warn("publish selection failed, retrying",
			"event_id", event.ID,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if !sleepWithContext(ctx, backoff) {
			return errors.Join(err, ctx.Err())
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
	return err
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
