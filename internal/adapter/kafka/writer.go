package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/outbreak-report/internal/config"
	"github.com/couchcryptid/outbreak-report/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Message kinds carried in the "kind" header.
const (
	KindSummary   = "summary"
	KindGeoPoints = "geo_points"
)

// pointsPerMessage keeps each geo chunk well under the 1 MiB default of both
// kafka-go's BatchBytes and the broker's message.max.bytes.
const pointsPerMessage = 4000

// GeoChunk is the value of a geo_points message. Chunks share the summary's
// key and arrive after it in order, so a consumer rebuilds GeoLayer.Points by
// appending chunks 0..Chunks-1.
type GeoChunk struct {
	Source      string            `json:"source"`
	GeneratedAt time.Time         `json:"generated_at"`
	Chunk       int               `json:"chunk"`
	Chunks      int               `json:"chunks"`
	Points      []domain.GeoPoint `json:"points"`
}

// Writer publishes finished reports to a Kafka topic for downstream
// dashboards. It implements pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// Publish writes the report as a summary message followed by its geo points
// in chunks. All messages are keyed by the report source so they land on one
// partition in order.
func (w *Writer) Publish(ctx context.Context, report *domain.Report) error {
	msgs, err := serializeToMessages(report)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write report messages: %w", err)
	}

	bytes := 0
	for _, m := range msgs {
		bytes += len(m.Value)
	}
	w.logger.Info("report published",
		"topic", w.writer.Topic,
		"key", report.Source,
		"messages", len(msgs),
		"bytes", bytes,
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessages splits a Report into a summary message, whose geo layer
// has no points, and one message per chunk of geo points.
func serializeToMessages(report *domain.Report) ([]kafkago.Message, error) {
	summary := *report
	var points []domain.GeoPoint
	geoPolicy := "none"
	if report.Geo != nil {
		geo := *report.Geo
		points, geo.Points = geo.Points, nil
		summary.Geo = &geo
		geoPolicy = string(geo.Policy)
	}

	chunks := (len(points) + pointsPerMessage - 1) / pointsPerMessage
	key := []byte(report.Source)
	generatedAt := []byte(report.GeneratedAt.Format(time.RFC3339))

	data, err := json.Marshal(&summary)
	if err != nil {
		return nil, fmt.Errorf("serialize report: %w", err)
	}
	msgs := make([]kafkago.Message, 0, chunks+1)
	msgs = append(msgs, kafkago.Message{
		Key:   key,
		Value: data,
		Headers: []kafkago.Header{
			{Key: "generated_at", Value: generatedAt},
			{Key: "record_count", Value: []byte(strconv.Itoa(report.RecordCount))},
			{Key: "geo_policy", Value: []byte(geoPolicy)},
			{Key: "kind", Value: []byte(KindSummary)},
			{Key: "geo_chunks", Value: []byte(strconv.Itoa(chunks))},
		},
	})

	for i := range chunks {
		end := min((i+1)*pointsPerMessage, len(points))
		data, err := json.Marshal(GeoChunk{
			Source:      report.Source,
			GeneratedAt: report.GeneratedAt,
			Chunk:       i,
			Chunks:      chunks,
			Points:      points[i*pointsPerMessage : end],
		})
		if err != nil {
			return nil, fmt.Errorf("serialize geo chunk %d: %w", i, err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   key,
			Value: data,
			Headers: []kafkago.Header{
				{Key: "generated_at", Value: generatedAt},
				{Key: "kind", Value: []byte(KindGeoPoints)},
				{Key: "chunk", Value: []byte(strconv.Itoa(i))},
			},
		})
	}
	return msgs, nil
}
