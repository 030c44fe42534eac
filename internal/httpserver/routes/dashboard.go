package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/storefront/internal/httpserver/deps"
	"github.com/MrSnakeDoc/storefront/internal/httpserver/handlers"
)

func init() {
	Register(registerDashboard, hostGuard, sessionGuard)
	Register(registerMutations, hostGuard, sessionGuard, mutationGuard)
}

func registerDashboard(r chi.Router, d deps.Deps) {
	r.Get("/api/businesses", handlers.Businesses(d))
	r.Post("/api/businesses/reload", handlers.Reload(d))
	r.Get("/api/overview", handlers.Overview(d))
	r.Get("/api/stats", handlers.Stats(d))
	r.Get("/api/reviews", handlers.Reviews(d))
	r.Get("/api/posts", handlers.Posts(d))
}

func registerMutations(r chi.Router, d deps.Deps) {
	r.Post("/api/reviews/reply", handlers.ReplyToReview(d))
	r.Post("/api/posts", handlers.CreatePost(d))
}
