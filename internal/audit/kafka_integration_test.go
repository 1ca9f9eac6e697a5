//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"coursegate/internal/audit"
	"coursegate/internal/platform/config"
	"coursegate/pkg/testutil/containers"
)

func TestKafkaSinkPublishesEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	broker := containers.GetManager().GetRedpanda(t).Broker
	const topic = "coursegate.audit.test"

	admin, err := kgo.NewClient(kgo.SeedBrokers(broker))
	require.NoError(t, err)
	defer admin.Close()
	_, err = kadm.NewClient(admin).CreateTopic(ctx, 1, 1, nil, topic)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink, err := audit.NewKafkaSink(config.KafkaConfig{
		Brokers:    []string{broker},
		AuditTopic: topic,
	}, logger)
	require.NoError(t, err)
	defer sink.Close()

	event := audit.Event{
		ID:         uuid.New(),
		OccurredAt: time.Now().UTC().Truncate(time.Millisecond),
		Actor:      "alice",
		Action:     audit.ActionCheckoutRecorded,
		Subject:    "pay-1",
		Detail:     "amount=150.50",
	}
	sink.Publish(ctx, event)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	pollCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(pollCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, "pay-1", string(records[0].Key))

	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, event.ID, got.ID)
	require.Equal(t, audit.ActionCheckoutRecorded, got.Action)
	require.Equal(t, "alice", got.Actor)
}
