package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cablecom/leads-api/internal/infra/http/middleware"
)

type RouterConfig struct {
	Leads          *LeadHandler
	Auth           *AuthHandler
	Facebook       *FacebookHandler
	Health         *HealthHandler
	Sessions       middleware.SessionChecker
	AllowedOrigins []string
	Log            *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(chimw.Timeout(30 * time.Second))
	// go-chi/cors treats an empty origin list as "any origin", so no list
	// means no cross-origin access at all.
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: !slices.Contains(cfg.AllowedOrigins, "*"),
			MaxAge:           300,
		}))
	}

	r.Get("/health", cfg.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/leads", func(r chi.Router) {
		r.Post("/", cfg.Leads.Submit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(cfg.Sessions))
			r.Get("/", cfg.Leads.List)
			r.Get("/stats", cfg.Leads.Stats)
			r.Get("/{id}", cfg.Leads.Get)
			r.Patch("/{id}", cfg.Leads.UpdateStatus)
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", cfg.Auth.Login)
		r.Post("/logout", cfg.Auth.Logout)
		r.Get("/session", cfg.Auth.Session)
	})

	r.Get("/facebook/posts", cfg.Facebook.Posts)

	return r
}
