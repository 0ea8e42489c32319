// Package server assembles the HTTP surface: routing, global middleware and
// the per-route auth/rate-limit policies.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/shopmesh/storefront/internal/accounts"
	"github.com/shopmesh/storefront/internal/catalog"
	"github.com/shopmesh/storefront/internal/middleware"
	"github.com/shopmesh/storefront/internal/proxy"
	"github.com/shopmesh/storefront/internal/reviews"
	"github.com/shopmesh/storefront/internal/util"
)

type Deps struct {
	Logger *slog.Logger

	Catalog  *catalog.Handler
	Accounts *accounts.Handler
	Reviews  *reviews.Handler

	Auth     *proxy.AuthProxy
	Payments *proxy.PaymentProxy
	Images   *proxy.ImageProxy
	Avatars  *proxy.AvatarProxy

	Authenticator *middleware.Authenticator
	// RateLimit guards the auth proxies; nil disables it.
	RateLimit func(http.Handler) http.Handler
}

func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		util.JSONResponse(w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   "not found",
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		util.JSONResponse(w, http.StatusMethodNotAllowed, map[string]any{
			"success": false,
			"error":   "method not allowed",
		})
	})

	r.Get("/health", Health)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", deps.Catalog.List)
		r.Get("/{id}/reviews", deps.Reviews.ListByProduct)
		r.Get("/{id}/reviews/summary", deps.Reviews.Summary)

		r.Group(func(r chi.Router) {
			r.Use(deps.Authenticator.RequireUser)
			r.Post("/{id}/reviews", deps.Reviews.Add)
		})

		// catalog mutation is admin territory
		r.Group(func(r chi.Router) {
			r.Use(deps.Authenticator.RequireAdmin)
			r.Post("/", deps.Catalog.Create)
			r.Post("/bulk", deps.Catalog.BulkCreate)
			r.Put("/{id}", deps.Catalog.Update)
			r.Delete("/{id}", deps.Catalog.Delete)
			r.Delete("/bulk/{action}", deps.Catalog.BulkDelete)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.Authenticator.RequireAdmin)
		r.Delete("/reviews/{id}", deps.Reviews.Delete)
	})

	r.Route("/users/{email}", func(r chi.Router) {
		r.Get("/", deps.Accounts.Get)
		r.Put("/", deps.Accounts.Put)
		r.Post("/orders", deps.Accounts.PlaceOrder)
		r.Post("/avatar", deps.Avatars.Upload)
		r.Delete("/avatar", deps.Avatars.Remove)
	})

	r.Route("/auth", func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit)
		}
		r.Post("/signup", deps.Auth.SignUp)
		r.Post("/signin", deps.Auth.SignIn)
		r.Post("/reset-password", deps.Auth.ResetPassword)
	})

	r.Post("/payments/intent", deps.Payments.CreateIntent)
	r.Get("/images/fetch", deps.Images.Fetch)

	return r
}

// Health is the liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	util.Success(w, http.StatusOK, map[string]any{"status": "ok"})
}
