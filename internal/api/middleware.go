// Package api implements the Mythril REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthMiddleware returns middleware that validates an API key supplied via
// the X-API-Key header or an "Authorization: Bearer <key>" header. When
// enabled is false, all requests pass through (local dev mode). Comparison
// is constant-time.
func AuthMiddleware(enabled bool, key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			presented := r.Header.Get("X-API-Key")
			if presented == "" {
				auth := r.Header.Get("Authorization")
				if strings.HasPrefix(auth, "Bearer ") {
					presented = strings.TrimPrefix(auth, "Bearer ")
				}
			}
			if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
