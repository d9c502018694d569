package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type contextKey string

const (
	TenantKey contextKey = "tenant"
	APIKeyKey contextKey = "api_key"
)

// skipAuth paths are reachable without credentials.
var skipAuth = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
}

// APIKeyAuth validates the API key from the Authorization header and binds
// the matching tenant to the request context.
func APIKeyAuth(validKeys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipAuth[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if apiKey == "" {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			// Constant-time comparison to prevent timing attacks
			valid := false
			var tenant string
			for t, key := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					valid = true
					tenant = t
					break
				}
			}

			if !valid {
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), TenantKey, tenant)
			ctx = context.WithValue(ctx, APIKeyKey, apiKey)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTenantFromContext extracts the authenticated tenant from context.
func GetTenantFromContext(ctx context.Context) string {
	if tenant, ok := ctx.Value(TenantKey).(string); ok {
		return tenant
	}
	return ""
}

// RequireValidTenant rejects requests whose authenticated tenant is malformed.
func RequireValidTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipAuth[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		if tenant := GetTenantFromContext(r.Context()); tenant != "" {
			if err := ValidateTenantID(tenant); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
