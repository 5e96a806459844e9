// Package server wires the gateway: routes, middleware chain, and the
// shared dependencies the handlers need.
package server

import (
	"log/slog"
	"net/http"

	"github.com/prepworks/interviewd/internal/store"
	"github.com/prepworks/interviewd/pkg/analysis"
	"github.com/prepworks/interviewd/pkg/assistant"
	"github.com/prepworks/interviewd/pkg/gateway/auth"
	"github.com/prepworks/interviewd/pkg/gateway/config"
	"github.com/prepworks/interviewd/pkg/gateway/handlers"
	"github.com/prepworks/interviewd/pkg/gateway/metrics"
	"github.com/prepworks/interviewd/pkg/gateway/mw"
)

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux

	store      store.Store
	analyzer   *analysis.Analyzer
	assistants *assistant.Builder
	metrics    *metrics.Metrics
}

func New(cfg config.Config, st store.Store, analyzer *analysis.Analyzer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		mux:        http.NewServeMux(),
		store:      st,
		analyzer:   analyzer,
		assistants: assistant.NewBuilder(cfg.PublicBaseURL+"/api/provider/webhook", cfg.WebhookSecret),
		metrics:    metrics.New("interviewd"),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("/healthz", handlers.HealthHandler{})
	s.mux.Handle("/readyz", handlers.ReadyHandler{Config: s.cfg, Store: s.store})
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	s.mux.Handle("POST /api/interview/start", handlers.StartInterviewHandler{
		Config:     s.cfg,
		Store:      s.store,
		Assistants: s.assistants,
		Logger:     s.logger,
		Metrics:    s.metrics,
	})
	s.mux.Handle("POST /api/interview/analyze", handlers.AnalyzeHandler{
		Config:   s.cfg,
		Store:    s.store,
		Analyzer: s.analyzer,
		Logger:   s.logger,
		Metrics:  s.metrics,
	})
	s.mux.Handle("POST /api/interview/end", handlers.EndInterviewHandler{
		Config:  s.cfg,
		Store:   s.store,
		Logger:  s.logger,
		Metrics: s.metrics,
	})
	s.mux.Handle("GET /api/questions/{interviewType}", handlers.QuestionsHandler{
		Store:  s.store,
		Logger: s.logger,
	})
	s.mux.Handle("GET /api/session/{sessionID}", handlers.SessionHandler{
		Store:  s.store,
		Logger: s.logger,
	})
	s.mux.Handle("POST /api/provider/webhook", handlers.WebhookHandler{
		Config:   s.cfg,
		Store:    s.store,
		Analyzer: s.analyzer,
		Logger:   s.logger,
		Metrics:  s.metrics,
	})
	s.mux.Handle("POST /api/resume/analyze", handlers.ResumeHandler{
		Config:  s.cfg,
		Logger:  s.logger,
		Metrics: s.metrics,
	})
}

// authExempt paths skip API-key auth: health probes and the metrics scrape
// run unauthenticated, and the provider webhook authenticates by HMAC
// signature instead.
func authExempt(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics", "/api/provider/webhook":
		return true
	}
	return false
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux

	authed := mw.Auth(s.cfg.AuthMode, auth.NewKeyring(s.cfg.APIKeys), h)
	h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authExempt(r.URL.Path) {
			s.mux.ServeHTTP(w, r)
			return
		}
		authed.ServeHTTP(w, r)
	})

	h = mw.CORS(s.cfg, h)
	h = mw.Recover(s.logger, h)
	h = s.metrics.Middleware(h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}
