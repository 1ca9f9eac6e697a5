// Package store persists identity records. Two implementations exist: an
// in-memory store for unit tests and a PostgreSQL store for production.
package store

import (
	"context"

	"coursegate/internal/identity/models"
)

// UserStore is the persistence port for identity records. Implementations
// return sentinel.ErrNotFound / sentinel.ErrConflict (optionally wrapped)
// for the corresponding facts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	DeleteAll(ctx context.Context) (int64, error)
}
