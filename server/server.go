// Package server exposes the chat pipeline over HTTP.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hupe1980/shopguard/logging"
	"github.com/hupe1980/shopguard/model"
	"github.com/hupe1980/shopguard/observability"
	"github.com/hupe1980/shopguard/pipeline"
)

// ChatRequest is the POST /v1/chat body.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the POST /v1/chat success body.
type ChatResponse struct {
	SessionID         string `json:"session_id"`
	Reply             string `json:"reply"`
	Source            string `json:"source"`
	GuardrailsApplied any    `json:"guardrails_applied,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Options configures a Server.
type Options struct {
	AuthToken      string
	RequestTimeout time.Duration
	Logger         logging.Logger
}

// Server routes HTTP traffic to the pipeline.
type Server struct {
	pipeline *pipeline.Pipeline
	router   chi.Router
	timeout  time.Duration
	logger   logging.Logger
}

// New builds the router. When AuthToken is non-empty, /v1/chat requires a
// matching bearer token; /healthz and /metrics stay open for probes and
// scrapers.
func New(p *pipeline.Pipeline, optFns ...func(o *Options)) *Server {
	opts := Options{
		RequestTimeout: 60 * time.Second,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		pipeline: p,
		timeout:  opts.RequestTimeout,
		logger:   opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", observability.MetricsHandler())

	r.Group(func(r chi.Router) {
		if opts.AuthToken != "" {
			r.Use(bearerAuth(opts.AuthToken))
		}
		r.Post("/v1/chat", s.handleChat)
	})

	s.router = r
	return s
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "message must not be empty"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	resp, err := s.pipeline.RunTurn(ctx, pipeline.Request{
		SessionID: req.SessionID,
		Message:   req.Message,
	})
	if err != nil {
		if errors.Is(err, model.ErrUnavailable) {
			s.logger.Warn("server.chat.model_unavailable", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "model temporarily unavailable"})
			return
		}
		s.logger.Error("server.chat.failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	out := ChatResponse{
		SessionID: resp.SessionID,
		Reply:     resp.Result.Reply,
		Source:    string(resp.Result.Source),
	}
	if len(resp.Result.GuardrailsApplied) > 0 {
		out.GuardrailsApplied = resp.Result.GuardrailsApplied
	}
	respondJSON(w, http.StatusOK, out)
}

// bearerAuth rejects requests whose Authorization header does not carry the
// configured token. Comparison is constant time.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
