package store

import (
	"context"
	"sync"

	"coursegate/internal/identity/models"
	"coursegate/pkg/platform/sentinel"
)

// InMemoryUserStore keeps identity records in a map, keyed by username.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewMemory constructs an empty in-memory user store.
func NewMemory() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[string]models.User)}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Username]; exists {
		return sentinel.ErrConflict
	}
	s.users[user.Username] = *user
	return nil
}

func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (s *InMemoryUserStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := int64(len(s.users))
	s.users = make(map[string]models.User)
	return removed, nil
}
