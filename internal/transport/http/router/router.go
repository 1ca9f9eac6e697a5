// Package router assembles the HTTP surface: middleware chain, access
// policies, and route registration.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	identityhandler "coursegate/internal/identity/handler"
	paymenthandler "coursegate/internal/payment/handler"
	"coursegate/internal/platform/metrics"
	"coursegate/internal/platform/middleware"
	"coursegate/internal/transport/http/shared"
)

// policies is the static access table. Token decoding never rejects a
// request; this table is the only place authorization happens.
var policies = []middleware.RoutePolicy{
	{
		Path:    "/deleteAll",
		Methods: []string{http.MethodDelete},
		Roles:   []string{"admin"},
	},
}

// Deps carries everything the router needs. Health may be nil, in which case
// /healthz only reports process liveness.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Registry       *prometheus.Registry
	TokenValidator middleware.TokenValidator
	Identity       *identityhandler.Handler
	Payment        *paymenthandler.Handler
	AllowedOrigins []string
	Health         func(ctx context.Context) error
}

// New builds the chi router with the full middleware chain.
func New(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger, deps.Metrics))
	// Browsers reject credentialed responses for a wildcard origin, so the
	// token cookie is only offered when origins are configured explicitly.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !slices.Contains(deps.AllowedOrigins, "*"),
		MaxAge:           300,
	}))
	r.Use(middleware.Authenticate(deps.TokenValidator, deps.Logger))
	r.Use(middleware.RequirePolicy(policies, deps.Logger))

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	deps.Identity.Register(r)
	deps.Payment.Register(r)

	return r
}

func handleHealth(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable, shared.Response{
					Success: false,
					Message: "dependency unavailable",
				})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, shared.Response{Success: true})
	}
}
