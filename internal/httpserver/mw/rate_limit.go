package mw

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/MrSnakeDoc/storefront/internal/utils"
)

type RateLimitConfig struct {
	RequestLimit int
	Window       time.Duration
	TrustProxy   bool // resolve IP from proxy headers when true
}

// RateLimit limits requests per client IP with a sliding window.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.RequestLimit < 1 {
		cfg.RequestLimit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	retryAfter := strconv.Itoa(int(cfg.Window.Seconds()))

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.Window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return utils.ClientIP(r, cfg.TrustProxy), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retryAfter)
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "trop de requêtes, veuillez réessayer plus tard",
			})
		}),
	)
}
