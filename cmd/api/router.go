package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/xavierca1/taskflow/internal/infra/http/handlers"
	"github.com/xavierca1/taskflow/internal/infra/http/middleware"
)

type routerDeps struct {
	Logger      zerolog.Logger
	CORSOrigins []string
	Auth        *middleware.Authenticator
	Limiter     middleware.Limiter
	TrustProxy  bool

	Activities *handlers.ActivityHandler
	Progress   *handlers.ProgressHandler
	Leads      *handlers.LeadHandler
	Health     *handlers.HealthHandler
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	if d.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/health", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	// ingestão pública, só com rate limit por IP
	r.With(middleware.RateLimit(d.Limiter)).Post("/activities", d.Activities.Record)

	r.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireUser)

		r.Get("/me/progress", d.Progress.Get)
		r.Post("/me/xp", d.Progress.Award)
		r.Post("/me/reset", d.Progress.Reset)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/leads", d.Leads.List)
			r.Get("/leads/{id}", d.Leads.Get)
			r.Patch("/leads/{id}/status", d.Leads.UpdateStatus)
		})
	})

	return r
}
