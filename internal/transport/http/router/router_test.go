package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	identityhandler "coursegate/internal/identity/handler"
	identitymocks "coursegate/internal/identity/handler/mocks"
	paymenthandler "coursegate/internal/payment/handler"
	paymentmocks "coursegate/internal/payment/handler/mocks"
	"coursegate/internal/platform/metrics"
	"coursegate/internal/token"
)

func newTestRouter(t *testing.T) (http.Handler, *identitymocks.MockService, *token.Service) {
	t.Helper()
	return newTestRouterWithOrigins(t, []string{"*"})
}

func newTestRouterWithOrigins(t *testing.T, origins []string) (http.Handler, *identitymocks.MockService, *token.Service) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	identitySvc := identitymocks.NewMockService(ctrl)
	paymentSvc := paymentmocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := token.New("test-secret", time.Hour)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	r := New(Deps{
		Logger:         logger,
		Metrics:        metrics.New(registry),
		Registry:       registry,
		TokenValidator: tokens,
		Identity:       identityhandler.New(identitySvc, time.Hour, logger),
		Payment:        paymenthandler.New(paymentSvc, logger),
		AllowedOrigins: origins,
	})
	return r, identitySvc, tokens
}

func TestDeleteAllForbiddenWithoutToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/deleteAll", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Forbidden"}`, w.Body.String())
}

func TestDeleteAllForbiddenForStandardRole(t *testing.T) {
	router, _, tokens := newTestRouter(t)

	signed, err := tokens.Issue("user-1", "bob", "standard")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/deleteAll", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteAllAllowedForAdmin(t *testing.T) {
	router, identitySvc, tokens := newTestRouter(t)
	identitySvc.EXPECT().DeleteAllUsers(gomock.Any()).Return(int64(2), nil)

	signed, err := tokens.Issue("user-1", "alice", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/deleteAll", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInvalidTokenStillReachesPublicRoutes(t *testing.T) {
	router, identitySvc, _ := newTestRouter(t)
	identitySvc.EXPECT().DeleteAllUsers(gomock.Any()).Times(0)

	// A garbage token leaves the request anonymous. Public routes still work,
	// protected routes stay forbidden.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/deleteAll", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// Wildcard origins and credentialed CORS are mutually exclusive in browsers,
// so the wildcard default must not advertise credentials support.
func TestCORSWildcardOriginDisablesCredentials(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSExplicitOriginAllowsCredentials(t *testing.T) {
	router, _, _ := newTestRouterWithOrigins(t, []string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestMetricsEndpointExposed(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "coursegate_")
}
