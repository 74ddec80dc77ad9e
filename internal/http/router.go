package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"greenmap/internal/auth"
	"greenmap/internal/comments"
	"greenmap/internal/config"
	"greenmap/internal/token"
)

// NewRouter wires application routes and middleware using chi.
func NewRouter(
	cfg config.Config,
	authSvc *auth.Service,
	google *auth.GoogleVerifier,
	issuer *token.Issuer,
	commentSvc *comments.Service,
	users auth.Repository,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(newSlogMiddleware(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	authHandler := NewAuthHandler(authSvc, google, cfg.Environment, logger)
	commentHandler := NewCommentHandler(commentSvc, users, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/google", authHandler.SignInGoogle)
			if cfg.WebFlowEnabled() {
				r.Get("/google/redirect", authHandler.RedirectGoogle)
				r.Get("/google/callback", authHandler.CallbackGoogle)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(newBearerAuthMiddleware(issuer, logger))
			r.Route("/places/{placeID}/comments", func(r chi.Router) {
				r.Get("/", commentHandler.List)
				r.Post("/", commentHandler.Add)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", commentHandler.Get)
					r.Delete("/", commentHandler.Delete)
				})
			})
		})
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
