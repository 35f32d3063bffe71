package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/creatorhub/app"
	"github.com/upb/creatorhub/handlers"
	"github.com/upb/creatorhub/middleware"
	"github.com/upb/creatorhub/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recover(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(chimw.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Link", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.Health.HandleHealth)
	r.Get("/readyz", deps.Health.HandleReadiness)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	guard := deps.Guard
	tenant := middleware.URLParamTenant("id")
	creators := deps.CreatorHandler
	subs := deps.SubscriptionHandler
	posts := deps.PostHandler

	r.Route("/api/v1", func(r chi.Router) {
		// Session endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", handlers.AuthLoginHandler(deps))
			r.Post("/logout", handlers.AuthLogoutHandler(deps))
			r.With(guard.RequireAuth).Get("/me", handlers.CurrentUserHandler)
		})

		// Creators
		r.Route("/creators", func(r chi.Router) {
			r.Get("/", guard.WithAuth(creators.HandleList))
			r.Post("/", guard.WithAuth(creators.HandleCreate))
			r.Get("/managed", guard.WithAuth(creators.HandleManaged))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", guard.WithAuth(creators.HandleGet))
				r.Patch("/", guard.WithTenantAccess(tenant, creators.HandleUpdate))
				r.Post("/invite", guard.WithTenantAccess(tenant, creators.HandleInvite))
				r.Get("/members", guard.WithTenantAccess(tenant, creators.HandleMembers))
				r.Post("/ghost-author", guard.WithTenantAccess(tenant, creators.HandleSetupGhostAuthor))

				r.Get("/posts", guard.WithAuth(posts.HandleList))
				r.With(guard.RequireTenantAccess(tenant)).Post("/posts", withAuthContext(posts.HandleCreate))
			})
		})

		// Subscriptions of the caller
		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(guard.RequireAuth)
			r.Get("/", withAuthContext(subs.HandleList))
			r.Post("/", withAuthContext(subs.HandleSubscribe))
			r.Delete("/{creatorId}", withAuthContext(subs.HandleUnsubscribe))
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}

// withAuthContext adapts an authenticated handler to routes whose guards
// run as chi middleware and have already placed the auth context
func withAuthContext(h middleware.AuthedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac := middleware.GetAuthFromContext(r.Context())
		if ac == nil {
			_ = utils.WriteUnauthorized(w, "")
			return
		}
		h(w, r, ac)
	}
}
