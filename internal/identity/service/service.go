// Package service implements registration, authentication, and the
// administrative purge over the user store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"coursegate/internal/audit"
	"coursegate/internal/identity/models"
	"coursegate/internal/identity/password"
	"coursegate/internal/platform/metrics"
	derrors "coursegate/pkg/domain-errors"
	"coursegate/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// UserStore is the persistence port the service depends on.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	Issue(userID, username, role string) (string, error)
}

// Service provides identity operations. It never exposes password hashes and
// translates store facts into domain errors.
type Service struct {
	users   UserStore
	tokens  TokenIssuer
	auditor audit.Recorder
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNow sets the clock function (for testing).
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an identity Service. auditor and metrics may be nil.
func New(users UserStore, tokens TokenIssuer, auditor audit.Recorder, m *metrics.Metrics, logger *slog.Logger, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	s := &Service{
		users:   users,
		tokens:  tokens,
		auditor: auditor,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register validates the request, hashes the password, and persists a new
// user account.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Unit:         req.Unit,
		Sector:       req.Sector,
		Role:         req.Role,
		CreatedAt:    s.now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return derrors.New(derrors.CodeConflict, "username already registered")
		}
		return derrors.Wrap(err, derrors.CodeInternal, "failed to save user")
	}

	if s.metrics != nil {
		s.metrics.UsersRegistered.Inc()
	}
	s.record(ctx, audit.Event{
		Actor:   req.Username,
		Action:  audit.ActionUserRegistered,
		Subject: user.ID.String(),
		Detail:  string(req.Role),
	})
	return nil
}

// Login authenticates a username/password pair and issues a session token
// embedding the role snapshot at issuance time.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (*models.LoginResult, error) {
	if username == "" || rawPassword == "" {
		return nil, derrors.New(derrors.CodeBadRequest, "username and password are required")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.countLogin("not_found")
			return nil, derrors.New(derrors.CodeNotFound, "User not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to look up user")
	}

	if !password.Verify(user.PasswordHash, rawPassword) {
		s.countLogin("wrong_password")
		return nil, derrors.New(derrors.CodeUnauthorized, "Wrong password")
	}

	signed, err := s.tokens.Issue(user.ID.String(), user.Username, string(user.Role))
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to issue token")
	}

	s.countLogin("success")
	s.record(ctx, audit.Event{
		Actor:   user.Username,
		Action:  audit.ActionUserLogin,
		Subject: user.ID.String(),
	})
	return &models.LoginResult{Username: user.Username, Token: signed}, nil
}

// DeleteAllUsers removes every identity record and reports the count. Role
// enforcement happens in the route policy table, not here.
func (s *Service) DeleteAllUsers(ctx context.Context) (int64, error) {
	removed, err := s.users.DeleteAll(ctx)
	if err != nil {
		return 0, derrors.Wrap(err, derrors.CodeInternal, "failed to delete users")
	}
	s.record(ctx, audit.Event{
		Actor:   "admin",
		Action:  audit.ActionUsersPurged,
		Detail:  fmt.Sprintf("removed=%d", removed),
		Subject: "users",
	})
	return removed, nil
}

func (s *Service) countLogin(result string) {
	if s.metrics != nil {
		s.metrics.Logins.WithLabelValues(result).Inc()
	}
}

func (s *Service) record(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		s.auditor.Record(ctx, event)
	}
}
