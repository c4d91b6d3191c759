//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/location-picker/internal/adapter/kafka"
	"github.com/couchcryptid/location-picker/internal/cascade"
	"github.com/couchcryptid/location-picker/internal/config"
	"github.com/couchcryptid/location-picker/internal/domain"
	"github.com/couchcryptid/location-picker/internal/observability"
)

const testTopic = "test-location-selections"

type staticDirectory struct{}

func (staticDirectory) ListCountries(_ context.Context) ([]domain.Country, error) {
	return []domain.Country{{Code: "US", Name: "United States"}}, nil
}

func (staticDirectory) ListStates(_ context.Context, _ string) ([]domain.State, error) {
	return []domain.State{{Code: "CA", Name: "California"}}, nil
}

func (staticDirectory) ListCities(_ context.Context, _, _ string) ([]domain.City, error) {
	return []domain.City{{ID: 1, Name: "Los Angeles"}}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("location-picker-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestSelectionEventRoundTrip drives a full cascade with the Kafka writer as
// the sink and reads the published event back.
func TestSelectionEventRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers:        []string{broker},
		KafkaSelectionTopic: testTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	sel := cascade.NewSelector(staticDirectory{}, writer, domain.SourceWeb, discardLogger(), metrics)

	sel.Initialize(ctx)
	sel.Wait()
	sel.SelectCountry(ctx, "US")
	sel.Wait()
	require.NoError(t, sel.SelectState(ctx, "CA"))
	sel.Wait()
	require.NoError(t, sel.SelectCity(ctx, 1))
	sel.Wait()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	t.Cleanup(func() { _ = reader.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err, "read selection event")

	var event domain.SelectionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, event.ID, string(msg.Key))
	assert.Equal(t, "US", event.Country)
	assert.Equal(t, "California", event.StateName)
	assert.Equal(t, 1, event.CityID)
	assert.Equal(t, "Los Angeles", event.CityName)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, domain.SourceWeb, headers["source"])
	assert.Equal(t, event.SelectedAt.Format(time.RFC3339), headers["selected_at"])
}
