package cascade

import (
	"log/slog"

	"github.com/couchcryptid/location-picker/internal/observability"
)

// Report logs and counts the outcome of applying res. Failed fetches are
// logged at warn; stale results at debug.
func Report(logger *slog.Logger, metrics *observability.Metrics, res Result, applied bool) {
	list := res.Request.List.String()
	if !applied {
		metrics.StaleResponsesDiscarded.WithLabelValues(list).Inc()
		logger.Debug("discarded stale response",
			"list", list,
			"token", res.Request.Token,
			"country", res.Request.Country,
			"state", res.Request.State,
		)
		return
	}
	if res.Err != nil {
		metrics.FetchFailures.WithLabelValues(list).Inc()
		logger.Warn("fetch "+list+" failed",
			"country", res.Request.Country,
			"state", res.Request.State,
			"error", res.Err,
		)
	}
}
