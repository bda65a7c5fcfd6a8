// Package handler provides the HTTP API for vidfeed.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/prn-tf/vidfeed/internal/auth"
	"github.com/prn-tf/vidfeed/internal/metrics"
)

// Router wires the API routes.
type Router struct {
	health   *HealthHandler
	users    *UserHandler
	timeline *TimelineHandler
	videos   *VideoHandler
	tokens   auth.TokenParser
	metrics  *metrics.Metrics
	maxBody  int64
	logger   zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	HealthHandler   *HealthHandler
	UserHandler     *UserHandler
	TimelineHandler *TimelineHandler
	VideoHandler    *VideoHandler
	Tokens          auth.TokenParser
	Metrics         *metrics.Metrics

	// MaxBodySize bounds request bodies; zero means unbounded.
	MaxBodySize int64

	Logger zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	return &Router{
		health:   config.HealthHandler,
		users:    config.UserHandler,
		timeline: config.TimelineHandler,
		videos:   config.VideoHandler,
		tokens:   config.Tokens,
		metrics:  config.Metrics,
		maxBody:  config.MaxBodySize,
		logger:   config.Logger,
	}
}

// Handler returns the main HTTP handler.
//
//	GET  /v1/health-check
//	POST /v1/users          register
//	POST /v1/sessions       login
//	GET  /v1/timeline       ?cursor=N
//	POST /v1/posts          publish (auth)
//	POST /v1/videos         start upload (auth)
//	GET  /v1/videos/{id}    fetch video (auth)
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(hlog.NewHandler(rt.logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(rt.metrics.Middleware)
	if rt.maxBody > 0 {
		r.Use(middleware.RequestSize(rt.maxBody))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check", rt.health.HealthCheck)

		r.Group(func(r chi.Router) {
			r.Use(RequireRequestID)

			r.Post("/users", rt.users.Register)
			r.Post("/sessions", rt.users.Login)
			r.Get("/timeline", rt.timeline.Timeline)

			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(rt.tokens))

				r.Post("/posts", rt.timeline.Publish)
				r.Post("/videos", rt.videos.StartUpload)
				r.Get("/videos/{id}", rt.videos.GetVideo)
			})
		})
	})

	return r
}
