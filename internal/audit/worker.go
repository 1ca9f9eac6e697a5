package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from the publisher's channel and fans them out
// to the store and, when configured, the Kafka sink. Sink failures are logged
// and never interrupt consumption.
type Worker struct {
	store  Store
	sink   *KafkaSink
	inbox  <-chan Event
	logger *slog.Logger
}

// NewWorker wires a worker to the publisher inbox. sink may be nil.
func NewWorker(store Store, sink *KafkaSink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, sink: sink, inbox: inbox, logger: logger}
}

// Run consumes until ctx is cancelled. It drains with best-effort semantics:
// a store failure is logged, not fatal, because auditing must not take the
// service down.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to persist audit event",
					"action", event.Action,
					"error", err,
				)
			}
			if w.sink != nil {
				w.sink.Publish(ctx, event)
			}
		}
	}
}
