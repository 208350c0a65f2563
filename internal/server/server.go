// Package server exposes stored tours over HTTP: the canonical document for
// viewers plus listing, validation and import endpoints for tooling.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/alexanderramin/panotour/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Addr    string
	Tours   service.TourService
	Import  service.ImportService
	Export  service.ExportService
	Logger  *slog.Logger
	MaxBody int64
}

type Server struct {
	addr    string
	handler http.Handler
	logger  *slog.Logger
}

func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxBody := cfg.MaxBody
	if maxBody <= 0 {
		maxBody = 10 << 20
	}
	h := &handlers{
		tours:   cfg.Tours,
		imports: cfg.Import,
		exports: cfg.Export,
		logger:  logger,
		maxBody: maxBody,
	}

	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		requestLogger(logger),
		middleware.Recoverer,
	)
	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/tiers", h.tiers)
		r.Post("/validate", h.validate)
		r.Route("/tours", func(r chi.Router) {
			r.Get("/", h.listTours)
			r.Post("/import", h.importTours)
			r.Get("/{id}", h.getTour)
			r.Delete("/{id}", h.deleteTour)
			r.Get("/{id}/validation", h.tourValidation)
		})
	})

	return &Server{addr: cfg.Addr, handler: r, logger: logger}
}

func (s *Server) Handler() http.Handler { return s.handler }

// Serve listens on the configured address and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler: s.handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("serving tours", "addr", ln.Addr().String())

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.DebugContext(r.Context(), "http_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
