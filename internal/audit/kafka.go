package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"coursegate/internal/platform/config"
)

// KafkaSink publishes audit events to a Kafka topic for downstream consumers
// (compliance, reconciliation auditing). Publishing is asynchronous and
// fire-and-forget; the audit store remains the durable record.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaSink connects to the configured brokers. Returns nil if no brokers
// are configured (Kafka is optional).
func NewKafkaSink(cfg config.KafkaConfig, logger *slog.Logger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.AuditTopic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaSink{client: client, topic: cfg.AuditTopic, logger: logger}, nil
}

// Publish produces one event keyed by subject so deliveries for the same
// entity stay ordered within a partition.
func (s *KafkaSink) Publish(ctx context.Context, event Event) {
	if s == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode audit event", "error", err)
		return
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: payload,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Error("failed to publish audit event",
				"topic", s.topic,
				"action", event.Action,
				"error", err,
			)
		}
	})
}

// Close flushes pending records and closes the client.
func (s *KafkaSink) Close() {
	if s == nil {
		return
	}
	s.client.Close()
}
