package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Recorder accepts audit events from domain services. The no-op check on a
// nil *Publisher lets services treat auditing as optional.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Publisher buffers events on a channel consumed by a Worker. Recording is
// fire-and-forget: a full buffer drops the event with a warning rather than
// stalling the request path.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

// NewPublisher creates a publisher with the given buffer size.
func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Record enqueues an event, stamping ID and timestamp if unset.
func (p *Publisher) Record(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"subject", event.Subject,
		)
	}
}

// Inbox exposes the event channel for the consuming worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}
