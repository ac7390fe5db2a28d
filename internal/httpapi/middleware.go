package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/emplix/emplix/internal/auth"
	"github.com/emplix/emplix/internal/tenant"
)

type claimsKey struct{}

// claimsFromContext returns the verified session claims, or nil on
// unauthenticated routes.
func claimsFromContext(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return c
}

// ResolveTenant resolves the acting tenant from the request and binds it to
// the context. Everything behind it can assume an ACTIVE tenant.
func ResolveTenant(resolver *tenant.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, err := resolver.Resolve(r.Context(), tenant.SlugFromRequest(r))
			if err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(tenant.WithTenant(r.Context(), t)))
		})
	}
}

// Authenticate verifies the Bearer session token and cross-checks its
// tenant claim against the resolved tenant. A valid token presented under
// the wrong tenant is rejected, not silently re-scoped.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				writeErrorCode(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			claims, err := auth.ParseToken(secret, tokenStr)
			if err != nil {
				writeErrorCode(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			t := tenant.FromContext(r.Context())
			if t == nil || claims.TenantID != t.TenantID {
				writeErrorCode(w, http.StatusForbidden, "tenant_mismatch", "token does not belong to this tenant")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a handler on the ADMIN role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil || claims.Role != "ADMIN" {
			writeErrorCode(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// chain applies middlewares right to left, so they execute in listed order.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
