package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/cablecom/leads-api/internal/usecase"
)

// SessionChecker verifies the admin session cookie on a request.
type SessionChecker interface {
	CheckRequest(r *http.Request) (*usecase.SessionClaims, error)
}

// RequireSession rejects requests without a valid admin session and stores
// the verified claims in the request context.
func RequireSession(gate SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := gate.CheckRequest(r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error":   usecase.CodeUnauthorized,
					"message": "Unauthorized",
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(usecase.WithSession(r.Context(), claims)))
		})
	}
}
