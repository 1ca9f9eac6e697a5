// Package token issues and validates the signed session tokens returned at
// login. Tokens are stateless: role and username are snapshots taken at
// issuance and are not re-checked against the user store.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	derrors "coursegate/pkg/domain-errors"
)

// Identity is what a validated session token asserts about its bearer.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

// Claims are the JWT claims carried by a session token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens with a single configured secret.
type Service struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNow sets the clock function, primarily for testing expiry boundaries.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a token Service. The signing key is required; it is the single
// source of truth for both issuing and verifying.
func New(signingKey string, ttl time.Duration, opts ...Option) (*Service, error) {
	if signingKey == "" {
		return nil, errors.New("token signing key is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &Service{
		signingKey: []byte(signingKey),
		ttl:        ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token asserting the given identity, expiring after the
// configured TTL.
func (s *Service) Issue(userID, username, role string) (string, error) {
	now := s.now()
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Validate verifies signature and expiry and returns the asserted identity.
// It satisfies middleware.TokenValidator.
func (s *Service) Validate(tokenString string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, derrors.New(derrors.CodeUnauthorized, "token has expired")
		}
		return nil, derrors.New(derrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, derrors.New(derrors.CodeUnauthorized, "invalid token claims")
	}

	return &Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
