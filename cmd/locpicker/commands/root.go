package commands

import (
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/location-picker/internal/adapter/csc"
	kafkaadapter "github.com/couchcryptid/location-picker/internal/adapter/kafka"
	"github.com/couchcryptid/location-picker/internal/config"
	"github.com/couchcryptid/location-picker/internal/domain"
	"github.com/couchcryptid/location-picker/internal/observability"
)

var cfg *config.Config

func Execute() error {
	root := &cobra.Command{
		Use:          "locpicker",
		Short:        "Cascading country, state, and city picker",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	root.AddCommand(serveCmd(), browseCmd(), snapshotCmd())
	return root.Execute()
}

// newDirectory builds the cached, rate-limited countrystatecity.in client.
func newDirectory(metrics *observability.Metrics, logger *slog.Logger) *csc.CachedDirectory {
	client := csc.NewClient(cfg, metrics, logger)
	logger.Info("directory configured",
		"base_url", cfg.CSCBaseURL,
		"cache_size", cfg.CSCCacheSize,
		"cache_ttl", cfg.CSCCacheTTL,
		"rate_limit", cfg.CSCRateLimit,
	)
	return csc.NewCachedDirectory(client, cfg.CSCCacheSize, cfg.CSCCacheTTL, clockwork.NewRealClock(), metrics)
}

// newSink returns the Kafka selection sink, or nil when events are disabled.
// The returned close func is always safe to call.
func newSink(metrics *observability.Metrics, logger *slog.Logger) (domain.SelectionSink, func()) {
	if !cfg.SelectionEventsEnabled {
		metrics.SelectionEventsEnabled.Set(0)
		logger.Info("selection events disabled")
		return nil, func() {}
	}

	writer := kafkaadapter.NewWriter(cfg, logger)
	metrics.SelectionEventsEnabled.Set(1)
	logger.Info("selection events enabled",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.KafkaSelectionTopic,
		"publish_attempts", cfg.SelectionPublishAttempts,
	)
	return kafkaadapter.NewRetryingSink(writer, cfg.SelectionPublishAttempts, logger), func() {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
}
