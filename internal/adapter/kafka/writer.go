package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/floodwatch/glofas-trigger/internal/config"
	"github.com/floodwatch/glofas-trigger/internal/domain"
)

// Writer publishes each run's trigger decisions to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer  *kafkago.Writer
	country string
	label   string
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured decision topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{
		writer:  w,
		country: cfg.CountryCode,
		label:   cfg.LeadTimeLabel(),
		logger:  logger,
	}
}

// Publish serializes and publishes the station trigger reports in a single
// WriteMessages call for efficiency.
func (w *Writer) Publish(ctx context.Context, reports []domain.StationTriggerReport) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := w.serializeToMessage(reports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Info("published trigger decisions", "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a station trigger report into a Kafka message
// keyed by station code, so all decisions for one station land in the same
// partition.
func (w *Writer) serializeToMessage(report domain.StationTriggerReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize trigger report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.Code),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "country", Value: []byte(w.country)},
			{Key: "lead_time", Value: []byte(w.label)},
		},
	}, nil
}
