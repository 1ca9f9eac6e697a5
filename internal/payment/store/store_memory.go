package store

import (
	"context"
	"sync"

	"coursegate/internal/payment/models"
	"coursegate/pkg/platform/sentinel"
)

// InMemoryLedger is a map-backed Ledger for tests and local development.
type InMemoryLedger struct {
	mu            sync.RWMutex
	notifications []models.PaymentNotification
	checkouts     map[string]models.CheckoutRecord
}

// NewMemory constructs an empty in-memory ledger.
func NewMemory() *InMemoryLedger {
	return &InMemoryLedger{
		checkouts: make(map[string]models.CheckoutRecord),
	}
}

func (s *InMemoryLedger) SaveNotification(_ context.Context, n *models.PaymentNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *InMemoryLedger) UpsertCheckout(_ context.Context, c *models.CheckoutRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.checkouts[c.PaymentID]; exists {
		return false, nil
	}
	s.checkouts[c.PaymentID] = *c
	return true, nil
}

func (s *InMemoryLedger) FindCheckout(_ context.Context, paymentID string) (*models.CheckoutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.checkouts[paymentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &record, nil
}

// Notifications returns a copy of everything recorded so far.
func (s *InMemoryLedger) Notifications() []models.PaymentNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PaymentNotification, len(s.notifications))
	copy(out, s.notifications)
	return out
}
