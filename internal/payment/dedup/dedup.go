// Package dedup short-circuits repeated webhook deliveries before any
// processor call is made. The database upsert stays the source of truth for
// idempotency; this is an optimization layer, so failures open rather than
// close.
package dedup

import (
	"context"
	"log/slog"
	"time"

	"coursegate/internal/platform/redis"
)

const (
	keyPrefix  = "coursegate:webhook:"
	defaultTTL = 24 * time.Hour
)

// RedisDeduper tracks payment IDs whose reconciliation reached a terminal
// outcome. The check and the mark are split on purpose: a delivery that ends
// in a transient failure must not be marked, so the processor's redelivery
// still gets processed.
type RedisDeduper struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewRedis constructs a deduper. A nil client yields a nil deduper, which
// callers treat as dedup disabled.
func NewRedis(client *redis.Client, logger *slog.Logger) *RedisDeduper {
	if client == nil {
		return nil
	}
	return &RedisDeduper{
		client: client,
		logger: logger,
		ttl:    defaultTTL,
	}
}

// AlreadyDelivered reports whether the payment ID was previously reconciled
// to a terminal outcome. On Redis failure it reports false so that processing
// falls through to the idempotent upsert.
func (d *RedisDeduper) AlreadyDelivered(ctx context.Context, paymentID string) bool {
	if d == nil {
		return false
	}
	seen, err := d.client.Exists(ctx, keyPrefix+paymentID).Result()
	if err != nil {
		d.logger.WarnContext(ctx, "webhook dedup unavailable, processing anyway",
			"payment_id", paymentID,
			"error", err,
		)
		return false
	}
	return seen == 1
}

// MarkDelivered records the payment ID with a TTL. Call only after the
// payment has been recorded (or found already recorded); failures are logged
// and ignored since a missed mark only costs a redundant fetch.
func (d *RedisDeduper) MarkDelivered(ctx context.Context, paymentID string) {
	if d == nil {
		return
	}
	if err := d.client.Set(ctx, keyPrefix+paymentID, 1, d.ttl).Err(); err != nil {
		d.logger.WarnContext(ctx, "failed to mark webhook delivery",
			"payment_id", paymentID,
			"error", err,
		)
	}
}
