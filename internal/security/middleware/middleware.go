package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/servicetracker/internal/domain"
	"github.com/yourorg/servicetracker/internal/identity"
	"github.com/yourorg/servicetracker/internal/observability/metrics"
	"github.com/yourorg/servicetracker/internal/security/audit"
	"github.com/yourorg/servicetracker/internal/security/ratelimit"
	"github.com/yourorg/servicetracker/internal/service"
)

type TenantContextKey struct{}

func isPublicPath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics" ||
		strings.HasPrefix(path, "/api/auth/")
}

// AuthMiddleware verifies the bearer token and attaches the resolved tenant
// context to the request. Requests to public endpoints pass through untouched.
func AuthMiddleware(resolver *service.TenantResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			token, err := identity.ExtractToken(authHeader)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			tc, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				switch domain.ErrorCode(err) {
				case domain.EUnauthorized:
					metrics.ObserveIdentityVerification("rejected")
					writeError(w, http.StatusUnauthorized, "Unauthorized")
				case domain.ETenantNotFound:
					writeError(w, http.StatusNotFound, "Business not found")
				default:
					log.Error("tenant resolution failed",
						slog.String("path", r.URL.Path),
						slog.String("error", err.Error()),
					)
					writeError(w, http.StatusInternalServerError, "Internal server error")
				}
				return
			}

			metrics.ObserveIdentityVerification("verified")
			ctx := context.WithValue(r.Context(), TenantContextKey{}, tc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware throttles requests per business. Requests from
// identities that have not onboarded yet are keyed by identity instead.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			key := ""
			if tc := GetTenantContext(r.Context()); tc != nil {
				if tc.Business != nil {
					key = tc.Business.ID
				} else if tc.Identity != nil {
					key = tc.Identity.ID
				}
			}

			if !limiter.Allow(key) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records mutating API calls before they are handled.
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			businessID := ""
			userID := ""
			if tc := GetTenantContext(r.Context()); tc != nil {
				if tc.Business != nil {
					businessID = tc.Business.ID
				}
				if tc.User != nil {
					userID = tc.User.ID
				}
			}

			// Routing hasn't happened yet, so resource IDs come off the
			// raw path rather than PathValue.
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/api/services/create":
				auditLog.LogAction(r.Context(), businessID, userID, "create", "service", "", "initiated", "")
			case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/api/services/"):
				auditLog.LogAction(r.Context(), businessID, userID, "update_status", "service", pathTail(r.URL.Path, "/api/services/"), "initiated", "")
			case r.Method == http.MethodPost && r.URL.Path == "/api/customers/create":
				auditLog.LogAction(r.Context(), businessID, userID, "create", "customer", "", "initiated", "")
			case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/api/customers/"):
				auditLog.LogAction(r.Context(), businessID, userID, "update", "customer", pathTail(r.URL.Path, "/api/customers/"), "initiated", "")
			case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/customers/"):
				auditLog.LogAction(r.Context(), businessID, userID, "delete", "customer", pathTail(r.URL.Path, "/api/customers/"), "initiated", "")
			case r.Method == http.MethodPost && r.URL.Path == "/api/user/business":
				auditLog.LogAction(r.Context(), businessID, userID, "onboard", "business", "", "initiated", "")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// pathTail returns the first path segment after prefix.
func pathTail(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i]
	}
	return rest
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}

// GetTenantContext returns the tenant context attached by AuthMiddleware,
// or nil if the request was not authenticated.
func GetTenantContext(ctx context.Context) *service.TenantContext {
	if tc := ctx.Value(TenantContextKey{}); tc != nil {
		return tc.(*service.TenantContext)
	}
	return nil
}
