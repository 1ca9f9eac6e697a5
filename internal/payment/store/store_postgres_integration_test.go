//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"coursegate/internal/payment/models"
	"coursegate/internal/payment/store"
	"coursegate/pkg/platform/sentinel"
	"coursegate/pkg/testutil/containers"
)

type PostgresLedgerSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	ledger   *store.PostgresLedger
}

func TestPostgresLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.ledger = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresLedgerSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "payment_notifications", "checkouts"))
}

func newCheckout(paymentID string) *models.CheckoutRecord {
	return &models.CheckoutRecord{
		PaymentID:  paymentID,
		Email:      "buyer@example.com",
		Courses:    `["Go Course"]`,
		Amount:     150.5,
		RecordedAt: time.Now().UTC(),
	}
}

func (s *PostgresLedgerSuite) TestUpsertCheckoutAndFind() {
	ctx := context.Background()
	inserted, err := s.ledger.UpsertCheckout(ctx, newCheckout("pay-1"))
	s.Require().NoError(err)
	s.True(inserted)

	found, err := s.ledger.FindCheckout(ctx, "pay-1")
	s.Require().NoError(err)
	s.Equal("buyer@example.com", found.Email)
	s.Equal(`["Go Course"]`, found.Courses)
}

// TestConcurrentUpsertSamePayment verifies that simultaneous webhook
// deliveries for one payment produce exactly one checkout row.
func (s *PostgresLedgerSuite) TestConcurrentUpsertSamePayment() {
	ctx := context.Background()
	const goroutines = 50

	var wg sync.WaitGroup
	var insertedCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := s.ledger.UpsertCheckout(ctx, newCheckout("pay-race"))
			if err == nil && inserted {
				insertedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), insertedCount.Load(), "exactly one upsert should insert")

	var rows int
	err := s.postgres.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM checkouts WHERE payment_id = $1`, "pay-race").Scan(&rows)
	s.Require().NoError(err)
	s.Equal(1, rows)
}

func (s *PostgresLedgerSuite) TestDuplicateUpsertKeepsFirstRow() {
	ctx := context.Background()
	first := newCheckout("pay-1")
	inserted, err := s.ledger.UpsertCheckout(ctx, first)
	s.Require().NoError(err)
	s.True(inserted)

	second := newCheckout("pay-1")
	second.Email = "other@example.com"
	inserted, err = s.ledger.UpsertCheckout(ctx, second)
	s.Require().NoError(err)
	s.False(inserted)

	found, err := s.ledger.FindCheckout(ctx, "pay-1")
	s.Require().NoError(err)
	s.Equal("buyer@example.com", found.Email)
}

func (s *PostgresLedgerSuite) TestFindCheckoutMissing() {
	_, err := s.ledger.FindCheckout(context.Background(), "nope")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresLedgerSuite) TestNotificationsAppendWithDuplicates() {
	ctx := context.Background()
	for range 3 {
		s.Require().NoError(s.ledger.SaveNotification(ctx, &models.PaymentNotification{
			PaymentID:  "n-" + uuid.NewString()[:8],
			Email:      "buyer@example.com",
			Courses:    `["Go Course"]`,
			Amount:     99.9,
			ReceivedAt: time.Now().UTC(),
		}))
	}
	// Same external ID twice: notifications are never deduplicated.
	dup := &models.PaymentNotification{
		PaymentID: "n-dup", Email: "buyer@example.com",
		Courses: `["Go Course"]`, Amount: 99.9, ReceivedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.ledger.SaveNotification(ctx, dup))
	s.Require().NoError(s.ledger.SaveNotification(ctx, dup))

	var rows int
	err := s.postgres.DB.QueryRowContext(ctx, `SELECT count(*) FROM payment_notifications`).Scan(&rows)
	s.Require().NoError(err)
	s.Equal(5, rows)
}
