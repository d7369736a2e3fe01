package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/user-auth-service/app"
	"github.com/upb/user-auth-service/handlers"
	"github.com/upb/user-auth-service/middleware"
	"github.com/upb/user-auth-service/services"
	"github.com/upb/user-auth-service/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	cfg := deps.Config
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	}
	if cfg.Observability.MetricsEnabled && deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	// Security headers and compression
	r.Use(chimiddleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(chimiddleware.SetHeader("X-Frame-Options", "DENY"))
	r.Use(chimiddleware.SetHeader("Referrer-Policy", "no-referrer"))
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Anything unmatched, including a known path with the wrong method, is 404
	notFound := func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, services.ErrNotFound.Message)
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	// Health check endpoints
	health := handlers.NewHealthHandler(deps.Store, deps.Logger)
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	if cfg.Observability.MetricsEnabled && deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Logger)
	userHandler := handlers.NewUserHandler(deps.UserService, deps.Logger)
	requireAuth := deps.AuthMiddleware.RequireAuth

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.HandleLogin)
			r.With(requireAuth).Get("/refresh", authHandler.HandleRefresh)
		})

		r.Route("/users", func(r chi.Router) {
			// Registration is public
			r.Post("/", userHandler.HandleCreate)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", userHandler.HandleList)
				r.Get("/me", userHandler.HandleMe)
				r.Get("/{id}", userHandler.HandleGet)
				r.Delete("/{id}", userHandler.HandleDelete)
				r.Patch("/{id}", userHandler.HandleUpdate)
				r.Put("/{id}/password", userHandler.HandleUpdatePassword)
			})
		})
	})

	return r
}
