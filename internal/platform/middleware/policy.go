package middleware

import (
	"log/slog"
	"net/http"
	"slices"
)

// RoutePolicy maps a path and its methods onto the roles allowed to call it.
// The policy table is data: adding a protected route never touches the
// enforcement logic below.
type RoutePolicy struct {
	Path    string
	Methods []string
	Roles   []string
}

func (p RoutePolicy) matches(r *http.Request) bool {
	return p.Path == r.URL.Path && slices.Contains(p.Methods, r.Method)
}

// RequirePolicy enforces the static policy table. Requests matching a policy
// entry must carry an identity whose role is in the allowed set; everything
// else passes through untouched. The table must not be mutated after startup.
func RequirePolicy(policies []RoutePolicy, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, policy := range policies {
				if !policy.matches(r) {
					continue
				}

				identity, ok := GetIdentity(r.Context())
				if !ok || !slices.Contains(policy.Roles, identity.Role) {
					logger.WarnContext(r.Context(), "forbidden",
						"request_id", GetRequestID(r.Context()),
						"path", r.URL.Path,
						"method", r.Method,
						"authenticated", ok,
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusForbidden)
					_, _ = w.Write([]byte(`{"success":false,"message":"Forbidden"}`))
					return
				}
				break
			}
			next.ServeHTTP(w, r)
		})
	}
}
