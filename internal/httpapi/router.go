package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/yourname/go-ember/internal/config"
	"github.com/yourname/go-ember/internal/core"
	"github.com/yourname/go-ember/internal/metrics"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

type Router struct {
	cfg     config.Config
	svc     *core.Service
	limiter *rateLimiter
}

func NewRouter(cfg config.Config, svc *core.Service) http.Handler {
	r := chi.NewRouter()
	// Logging middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", dur).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors)
	r.Use(maxBody(cfg.BodyLimit))

	api := &Router{
		cfg:     cfg,
		svc:     svc,
		limiter: newRateLimiter(cfg.CreateRateRPS, cfg.CreateRateBurst),
	}

	r.MethodFunc(http.MethodGet, "/healthz", api.handleHealth)
	r.MethodFunc(http.MethodGet, "/readyz", api.handleReady)

	// Metrics
	r.MethodFunc(http.MethodGet, "/metrics", metrics.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", api.handleStatus)
		r.Route("/notes", func(r chi.Router) {
			r.Post("/", api.handleCreate)
			r.Get("/{id}", api.handlePreview)
			r.Delete("/{id}", api.handleConsume)
			r.Put("/{id}/extend", api.handleExtend)
		})
		r.Route("/analytics", func(r chi.Router) {
			r.Post("/{id}/track", api.handleTrack)
			r.Get("/{id}", api.handleAnalytics)
		})
	})

	return r
}
