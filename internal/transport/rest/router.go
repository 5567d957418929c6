package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/clearance-management/internal/auth"
	"github.com/frahmantamala/clearance-management/internal/dashboard"
	"github.com/frahmantamala/clearance-management/internal/request"
	"github.com/frahmantamala/clearance-management/internal/storage"
	"github.com/frahmantamala/clearance-management/internal/transport/middleware"
	"github.com/frahmantamala/clearance-management/internal/transport/swagger"
	"github.com/frahmantamala/clearance-management/internal/user"
)

type RouterDeps struct {
	DB               *sql.DB
	AuthHandler      *auth.Handler
	UserHandler      *user.Handler
	RequestHandler   *request.Handler
	DashboardHandler *dashboard.Handler
	UploadsDir       string
	AllowedOrigins   string
	Logger           *slog.Logger
}

// RegisterAllRoutes wires the full HTTP surface. Ordering matters on the
// protected group: identity resolution always runs before the admin gate.
func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB)

	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.RecoveryMiddleware(deps.Logger))

	// OpenAPI document and UI at the root, outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// uploaded documents are served statically by their stored name
	fileServer := http.StripPrefix(storage.PathPrefix+"/", http.FileServer(http.Dir(deps.UploadsDir)))
	router.Handle(storage.PathPrefix+"/*", fileServer)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", deps.AuthHandler.Register)
			sr.Post("/login", deps.AuthHandler.Login)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(deps.AuthHandler.AuthMiddleware)

			pr.Get("/users/me", deps.UserHandler.GetCurrentUser)

			pr.Route("/requests", func(rr chi.Router) {
				rr.Post("/", deps.RequestHandler.CreateRequest)
				rr.Get("/", deps.RequestHandler.GetRequests)
				rr.Get("/user-stats", deps.DashboardHandler.GetUserStats)
				rr.Get("/{id}", deps.RequestHandler.GetRequest)
				rr.Post("/{id}/comments", deps.RequestHandler.AddComment)

				// admin-only lifecycle and dashboard routes
				rr.Group(func(ar chi.Router) {
					ar.Use(deps.AuthHandler.RequireAdmin)
					ar.Get("/admin-stats", deps.DashboardHandler.GetAdminStats)
					ar.Put("/{id}", deps.RequestHandler.UpdateStatus)
					ar.Delete("/{id}", deps.RequestHandler.DeleteRequest)
					ar.Post("/{id}/review", deps.RequestHandler.ReviewRequest)
				})
			})

			pr.Route("/users", func(ur chi.Router) {
				ur.Group(func(ar chi.Router) {
					ar.Use(deps.AuthHandler.RequireAdmin)
					ar.Get("/", deps.UserHandler.GetUsers)
					ar.Delete("/{id}", deps.UserHandler.DeleteUser)
				})
			})
		})
	})
}
