package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/storefront/internal/auth"
	"github.com/MrSnakeDoc/storefront/internal/httpserver/deps"
	"github.com/MrSnakeDoc/storefront/internal/httpserver/handlers"
)

func init() { Register(registerAuth, hostGuard) }

func registerAuth(r chi.Router, d deps.Deps) {
	r.Get("/api/auth/status", handlers.AuthStatus(d))
	r.Post("/api/auth/client", handlers.SetClient(d))
	r.Post("/api/auth/login", handlers.Login(d))
	r.Get(auth.CallbackPath, handlers.Callback(d))
}
