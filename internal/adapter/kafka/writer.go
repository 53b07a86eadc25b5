// Package kafka publishes live-resolved indicator rows to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sdg2-indicator-service/internal/config"
	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces one message per indicator row, stamped by its clock.
// It implements resolver.TableSink.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// NewWriter creates a Kafka producer for the configured row topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: cfg.SourceTimeout,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics, clock: clockwork.NewRealClock()}
}

// Publish serializes every row of table and writes them in a single
// WriteMessages call. All messages of one call share a batch_id header.
func (w *Writer) Publish(ctx context.Context, src domain.Source, table domain.ResultTable) error {
	if len(table) == 0 {
		return nil
	}
	batchID := uuid.NewString()
	publishedAt := w.clock.Now().UTC()

	msgs := make([]kafkago.Message, len(table))
	for i := range table {
		msg, err := serializeToMessage(table[i], src, batchID, publishedAt)
		if err != nil {
			w.metrics.SinkErrors.Inc()
			return err
		}
		msgs[i] = msg
	}

	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		w.metrics.SinkErrors.Inc()
		return fmt.Errorf("publish %d rows: %w", len(msgs), err)
	}
	w.metrics.SinkPublished.Add(float64(len(msgs)))
	w.logger.Debug("rows published", "source", string(src), "rows", len(msgs), "batch_id", batchID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// messageKey groups all observations of one country and indicator on a
// partition.
func messageKey(row domain.IndicatorRow) []byte {
	return []byte(row.IndicatorCode + "|" + row.CountryCode)
}

// serializeToMessage marshals an IndicatorRow into a Kafka message.
func serializeToMessage(row domain.IndicatorRow, src domain.Source, batchID string, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize indicator row: %w", err)
	}
	return kafkago.Message{
		Key:   messageKey(row),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(src)},
			{Key: "batch_id", Value: []byte(batchID)},
			{Key: "published_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
