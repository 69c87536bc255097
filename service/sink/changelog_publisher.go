/*
 * @module service/sink/changelog_publisher
 * @description Kafka publisher for changelog entries: downstream consumers get
 *              a stream of report-field changes without polling the database
 * @architecture Layered architecture - messaging layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Changelog entries -> JSON messages -> Kafka topic
 * @rules Publishing is best-effort; a broker outage never fails a run
 * @dependencies github.com/segmentio/kafka-go
 * @refs service/sink/document_sink.go, service/quality_service.go
 */

package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"geoquality-service/service/models"
)

// ChangelogPublisher streams report changelog entries to a Kafka topic.
type ChangelogPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewChangelogPublisher creates the publisher from environment
// configuration. KAFKA_BROKERS is a comma-separated broker list.
func NewChangelogPublisher() *ChangelogPublisher {
	brokers := strings.Split(getEnvWithDefault("KAFKA_BROKERS", "localhost:9092"), ",")
	topic := getEnvWithDefault("KAFKA_CHANGELOG_TOPIC", "geoquality.report.changelog")

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 100 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	slog.Info("changelog publisher initialized", "brokers", brokers, "topic", topic)
	return &ChangelogPublisher{writer: writer, topic: topic}
}

// Publish sends the run's changelog entries. Messages are keyed by
// document ID so all changes of one document land in the same partition
// in order.
func (p *ChangelogPublisher) Publish(ctx context.Context, entries []models.ChangelogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.New().String()
		}
		value, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode changelog entry %s: %w", entry.ID, err)
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(entry.DocumentID),
			Value: value,
			Time:  entry.ChangedAt,
		})
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("publish %d changelog entries to %s: %w", len(messages), p.topic, err)
	}
	return nil
}

// Close flushes and releases the writer.
func (p *ChangelogPublisher) Close() error {
	return p.writer.Close()
}
