// Package http exposes the operational endpoints of the bot and, in webhook mode,
// the route Telegram pushes updates to.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/rapidhire/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultWebhookPath is where Telegram updates are accepted.
const DefaultWebhookPath = "/telegram/webhook"

// Info is reported by GET /info.
type Info struct {
	App       string `json:"app"`
	Version   string `json:"version"`
	Mode      string `json:"mode"`
	StartedAt string `json:"started_at"`
}

// Server holds the handlers of the operational endpoints.
type Server struct {
	Info     Info
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	webhookPath string
	webhook     http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithWebhook mounts h as POST path.
func WithWebhook(path string, h http.Handler) Option {
	return func(s *Server) {
		if path == "" {
			path = DefaultWebhookPath
		}
		s.webhookPath = path
		s.webhook = h
	}
}

// WithGatherer serves metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithLogger configures request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler builds the router.
func NewHandler(info Info, opts ...Option) http.Handler {
	s := &Server{
		Info:     info,
		Gatherer: prometheus.DefaultGatherer,
		Logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Info.StartedAt == "" {
		s.Info.StartedAt = time.Now().UTC().Format(time.RFC3339)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	if s.webhook != nil {
		r.Post(s.webhookPath, s.webhook.ServeHTTP)
	}
	return r
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Info)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
