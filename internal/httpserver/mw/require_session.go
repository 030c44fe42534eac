package mw

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/storefront/internal/logger"
	"github.com/MrSnakeDoc/storefront/internal/session"
)

// RequireSession answers 401 until a consent round has produced a token.
func RequireSession(sess *session.Session, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sess.Credential().Authenticated() {
				log.Debugf("RequireSession: %s %s REJECTED, not authenticated", r.Method, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "non authentifié, connectez-vous avec Google",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
