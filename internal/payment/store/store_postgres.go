package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coursegate/internal/payment/models"
	"coursegate/pkg/platform/sentinel"
)

// PostgresLedger persists payment records in PostgreSQL.
type PostgresLedger struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ledger.
func NewPostgres(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (s *PostgresLedger) SaveNotification(ctx context.Context, n *models.PaymentNotification) error {
	query := `
		INSERT INTO payment_notifications (payment_id, email, courses, amount, received_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		n.PaymentID, n.Email, n.Courses, n.Amount, n.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("save payment notification: %w", err)
	}
	return nil
}

// UpsertCheckout inserts the checkout if no row exists for the payment ID.
// A conflicting delivery keeps the first row untouched and reports zero
// affected rows, which is how we detect the duplicate.
func (s *PostgresLedger) UpsertCheckout(ctx context.Context, c *models.CheckoutRecord) (bool, error) {
	query := `
		INSERT INTO checkouts (payment_id, email, courses, amount, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (payment_id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query,
		c.PaymentID, c.Email, c.Courses, c.Amount, c.RecordedAt,
	)
	if err != nil {
		return false, fmt.Errorf("upsert checkout %q: %w", c.PaymentID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert checkout rows affected: %w", err)
	}
	return affected == 1, nil
}

func (s *PostgresLedger) FindCheckout(ctx context.Context, paymentID string) (*models.CheckoutRecord, error) {
	query := `
		SELECT payment_id, email, courses, amount, recorded_at
		FROM checkouts
		WHERE payment_id = $1
	`
	var record models.CheckoutRecord
	err := s.db.QueryRowContext(ctx, query, paymentID).Scan(
		&record.PaymentID, &record.Email, &record.Courses, &record.Amount, &record.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find checkout: %w", err)
	}
	return &record, nil
}
