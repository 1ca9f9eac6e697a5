// Package store persists payment notifications and processor-confirmed
// checkouts.
package store

import (
	"context"

	"coursegate/internal/payment/models"
)

// Ledger is the persistence surface for the payment service.
//
// UpsertCheckout must be idempotent on payment ID: re-recording a payment the
// processor delivered twice leaves a single row and reports inserted=false.
type Ledger interface {
	SaveNotification(ctx context.Context, n *models.PaymentNotification) error
	UpsertCheckout(ctx context.Context, c *models.CheckoutRecord) (inserted bool, err error)
	FindCheckout(ctx context.Context, paymentID string) (*models.CheckoutRecord, error)
}
