package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/covid-timeseries-etl/internal/config"
	"github.com/couchcryptid/covid-timeseries-etl/internal/domain"
)

// MessageWriter is the subset of *kafkago.Writer used by Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes one message per artifact day to a Kafka topic.
// It implements pipeline.ArtifactLoader.
type Writer struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newWriter(w, logger)
}

func newWriter(w MessageWriter, logger *slog.Logger) *Writer {
	return &Writer{writer: w, logger: logger}
}

// Load publishes every day of the artifact in a single WriteMessages call.
// Days are keyed by date so a compacted topic keeps the latest run per day.
func (w *Writer) Load(ctx context.Context, a *domain.Artifact, run domain.RunInfo) error {
	days := a.Days()
	if len(days) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(days))
	for i := range days {
		msg, err := serializeToMessage(days[i], run)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d days: %w", len(msgs), err)
	}
	w.logger.Info("days published", "count", len(msgs), "run_id", run.ID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DayPoint into a Kafka message.
func serializeToMessage(day domain.DayPoint, run domain.RunInfo) (kafkago.Message, error) {
	data, err := json.Marshal(day)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize day %s: %w", day.Date, err)
	}
	return kafkago.Message{
		Key:   []byte(day.Date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "country", Value: []byte(run.Country)},
			{Key: "run_id", Value: []byte(run.ID)},
			{Key: "generated_at", Value: []byte(run.GeneratedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
