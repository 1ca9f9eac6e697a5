package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherStampsEvents(t *testing.T) {
	pub := NewPublisher(4, discardLogger())

	pub.Record(context.Background(), Event{Action: ActionUserLogin, Subject: "alice"})

	select {
	case event := <-pub.Inbox():
		assert.NotZero(t, event.ID)
		assert.False(t, event.OccurredAt.IsZero())
		assert.Equal(t, ActionUserLogin, event.Action)
	default:
		t.Fatal("expected buffered event")
	}
}

func TestPublisherDropsWhenFull(t *testing.T) {
	pub := NewPublisher(1, discardLogger())

	pub.Record(context.Background(), Event{Action: ActionUserLogin, Subject: "a"})
	// Second record must not block even though nothing consumes.
	pub.Record(context.Background(), Event{Action: ActionUserLogin, Subject: "b"})

	assert.Len(t, pub.Inbox(), 1)
}

func TestNilPublisherIsNoop(t *testing.T) {
	var pub *Publisher
	// Must not panic.
	pub.Record(context.Background(), Event{Action: ActionUsersPurged})
}

func TestWorkerPersistsEvents(t *testing.T) {
	pub := NewPublisher(4, discardLogger())
	store := NewMemoryStore()
	worker := NewWorker(store, nil, pub.Inbox(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	pub.Record(ctx, Event{Action: ActionCheckoutRecorded, Subject: "pay-1"})

	require.Eventually(t, func() bool {
		return len(store.Events()) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ActionCheckoutRecorded, events[0].Action)
	assert.Equal(t, "pay-1", events[0].Subject)
}
