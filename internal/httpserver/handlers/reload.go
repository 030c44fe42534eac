package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/storefront/internal/httpserver/deps"
	"github.com/MrSnakeDoc/storefront/internal/logger"
)

type reloadResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// Reload queues a background business reload.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual business reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, reloadResponse{
				Triggered: true,
				Message:   "✅ Rechargement lancé",
			})
		default:
			d.Logger.Warn("business reload already queued",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, reloadResponse{
				Message: "⏳ Rechargement déjà en cours, veuillez patienter",
			})
		}
	}
}
