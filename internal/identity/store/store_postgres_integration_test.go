//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"coursegate/internal/identity/models"
	"coursegate/internal/identity/store"
	"coursegate/pkg/platform/sentinel"
	"coursegate/pkg/testutil/containers"
)

type PostgresUserStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresUserStore
}

func TestPostgresUserStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUserStoreSuite))
}

func (s *PostgresUserStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresUserStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "users"))
}

func newTestUser(username string) *models.User {
	return &models.User{
		ID:           uuid.New(),
		Username:     username,
		Name:         "Test User",
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMye",
		Unit:         "hq",
		Sector:       "sales",
		Role:         models.RoleStandard,
		CreatedAt:    time.Now().UTC(),
	}
}

func (s *PostgresUserStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	user := newTestUser("alice")
	s.Require().NoError(s.store.Create(ctx, user))

	found, err := s.store.FindByUsername(ctx, "alice")
	s.Require().NoError(err)
	s.Equal(user.ID, found.ID)
	s.Equal(user.PasswordHash, found.PasswordHash)
	s.Equal(models.RoleStandard, found.Role)
}

// TestConcurrentDuplicateUsername verifies that concurrent registrations of
// the same username result in exactly one row.
func (s *PostgresUserStoreSuite) TestConcurrentDuplicateUsername() {
	ctx := context.Background()
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, newTestUser("racer"))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should conflict")

	found, err := s.store.FindByUsername(ctx, "racer")
	s.Require().NoError(err)
	s.Equal("racer", found.Username)
}

func (s *PostgresUserStoreSuite) TestFindMissing() {
	_, err := s.store.FindByUsername(context.Background(), "nobody")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresUserStoreSuite) TestDeleteAllReportsCount() {
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		s.Require().NoError(s.store.Create(ctx, newTestUser(name)))
	}

	removed, err := s.store.DeleteAll(ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), removed)

	removed, err = s.store.DeleteAll(ctx)
	s.Require().NoError(err)
	s.Zero(removed)
}
