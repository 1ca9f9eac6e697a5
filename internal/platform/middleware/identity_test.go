package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursegate/internal/token"
)

type stubValidator struct {
	claims *token.Identity
	err    error
}

func (s stubValidator) Validate(string) (*token.Identity, error) {
	return s.claims, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthenticate_NoHeaderIsAnonymous(t *testing.T) {
	var sawIdentity bool
	handler := Authenticate(stubValidator{}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawIdentity = GetIdentity(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, sawIdentity)
}

func TestAuthenticate_InvalidTokenContinuesAnonymous(t *testing.T) {
	var sawIdentity bool
	validator := stubValidator{err: errors.New("signature invalid")}
	handler := Authenticate(validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawIdentity = GetIdentity(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// Decoding is best-effort: the request is not rejected here.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, sawIdentity)
}

func TestAuthenticate_ValidTokenSetsIdentity(t *testing.T) {
	validator := stubValidator{claims: &token.Identity{UserID: "u1", Username: "alice", Role: "admin"}}
	var got token.Identity
	handler := Authenticate(validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetIdentity(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "admin", got.Role)
}
