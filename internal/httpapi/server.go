// Package httpapi serves the forecasting service over HTTP for dashboards.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"opsim/internal/service"
)

type Server struct {
	router *chi.Mux
	svc    *service.Service
}

// NewServer wires the routes. gatherer backs GET /metrics.
func NewServer(svc *service.Service, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		router: chi.NewRouter(),
		svc:    svc,
	}
	s.routes(gatherer)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/current-state", s.currentState)
		r.Post("/simulate", s.simulate)
		r.Post("/optimize", s.optimize)
		r.Post("/benchmark", s.benchmark)
		r.Post("/historical-data", s.historicalData)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Post("/simulate", s.simulateSession)
				r.Post("/apply", s.applySuggestion)
			})
		})
	})
}

// requestLogger logs one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Str("requestId", middleware.GetReqID(r.Context())).
			Dur("took", time.Since(start)).
			Msg("HTTP request")
	})
}

// Run serves h on addr until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("HTTP API listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("HTTP API shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
