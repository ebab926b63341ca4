package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type contextKey string

const OwnerKey contextKey = "owner"

// APIKeyAuth resolves the caller identity from the Authorization header.
// validKeys maps owner id to API key. A request without the header passes
// through as anonymous; a header carrying an unknown key is rejected.
func APIKeyAuth(validKeys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if apiKey == "" {
				writeError(w, http.StatusUnauthorized, "invalid Authorization header format", "unauthorized")
				return
			}

			owner, ok := lookupOwner(validKeys, apiKey)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid API key", "unauthorized")
				return
			}

			setLoggedOwner(r.Context(), owner)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), OwnerKey, owner)))
		})
	}
}

// lookupOwner compares in constant time against every key.
func lookupOwner(validKeys map[string]string, apiKey string) (string, bool) {
	var owner string
	found := false
	for o, key := range validKeys {
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
			owner, found = o, true
		}
	}
	return owner, found
}

// GetOwnerFromContext returns the authenticated owner, or "" for anonymous.
func GetOwnerFromContext(ctx context.Context) string {
	if owner, ok := ctx.Value(OwnerKey).(string); ok {
		return owner
	}
	return ""
}
