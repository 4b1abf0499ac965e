// Package server exposes a provider over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/kazi-app/ups/internal/metrics"
	"github.com/kazi-app/ups/internal/ups"
)

// Options configure New.
type Options struct {
	CORSOrigins []string
	Logger      zerolog.Logger

	// Registry receives the provider and HTTP metrics. A fresh registry
	// with the Go and process collectors is used when nil.
	Registry *prometheus.Registry
}

// Server serves the provider API.
type Server struct {
	p        *ups.Provider
	log      zerolog.Logger
	registry *prometheus.Registry
	router   chi.Router
}

// New builds the router for p.
func New(p *ups.Provider, opts Options) *Server {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	reg.MustRegister(metrics.NewCollector(p))

	s := &Server{
		p:        p,
		log:      opts.Logger.With().Str("component", "http").Logger(),
		registry: reg,
	}
	s.router = s.routes(opts.CORSOrigins, metrics.NewHTTP(reg))
	return s
}

func (s *Server) routes(origins []string, httpMetrics *metrics.HTTP) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(httpMetrics.Middleware)
	if len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/features", func(r chi.Router) {
		r.Get("/", s.listFeatures)
		r.Put("/{name}", s.enableFeature)
		r.Delete("/{name}", s.disableFeature)
	})
	r.Route("/events", func(r chi.Router) {
		r.Post("/", s.publishEvent)
		r.Post("/broadcast", s.broadcast)
		r.Get("/stream", s.streamEvents)
	})
	r.Route("/comments", func(r chi.Router) {
		r.Get("/", s.listComments)
		r.Post("/", s.addComment)
		r.Get("/export", s.exportComments)
		r.Get("/{id}", s.getComment)
		r.Patch("/{id}", s.updateComment)
		r.Delete("/{id}", s.deleteComment)
		r.Post("/{id}/resolve", s.resolveComment)
		r.Post("/{id}/suggest", s.suggestReply)
	})
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", s.listNotifications)
		r.Post("/", s.addNotification)
		r.Delete("/", s.clearNotifications)
		r.Post("/read", s.markAllRead)
		r.Post("/{id}/read", s.markRead)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.log.Info().Msg("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
