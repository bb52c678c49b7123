// Package api exposes the session controller over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/capitals/internal/session"
)

// Options configures a Server.
type Options struct {
	// Logger receives request logs and internal errors. Nil discards.
	Logger *slog.Logger

	// AllowedOrigins enables CORS for browser clients. Empty disables it.
	AllowedOrigins []string

	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration
}

// Server serializes HTTP requests onto one session controller.
type Server struct {
	mu   sync.Mutex
	ctrl *session.Controller
	log  *slog.Logger
	opts Options
}

// New returns a Server driving ctrl. The caller keeps ownership of ctrl.
func New(ctrl *session.Controller, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Server{ctrl: ctrl, log: opts.Logger, opts: opts}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.Timeout))
	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/states", s.handleStates)
		r.Get("/history", s.handleHistory)
		r.Get("/stats", s.handleStats)

		r.Route("/quiz", func(r chi.Router) {
			r.Get("/", s.handleGetQuiz)
			r.Post("/", s.handleStartQuiz)
			r.Post("/resume", s.handleResumeQuiz)
			r.Put("/questions/{n}", s.handleSelectAnswer)
			r.Post("/finalize", s.handleFinalize)
			r.Post("/reset", s.handleReset)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
