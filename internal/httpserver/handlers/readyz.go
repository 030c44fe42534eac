package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/storefront/internal/auth"
	"github.com/MrSnakeDoc/storefront/internal/httpserver/deps"
)

const redisProbeTimeout = 2 * time.Second

type readyzResponse struct {
	Ready     bool   `json:"ready"`
	AuthState string `json:"auth_state"`
	Redis     string `json:"redis"`
}

// Readyz reports ready once the identity provider handle exists and, when
// configured, redis answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Auth.Status()
		redis := redisState(r.Context(), d)

		resp := readyzResponse{
			Ready:     st.State == auth.ReadyStateReady && redis != "down",
			AuthState: string(st.State),
			Redis:     redis,
		}
		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

// redisState is "disabled", "up" or "down".
func redisState(ctx context.Context, d deps.Deps) string {
	if d.Store == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, redisProbeTimeout)
	defer cancel()
	if err := d.Store.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
