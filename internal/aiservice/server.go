package aiservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// ContentAI is what the HTTP handlers need from the model backend.
type ContentAI interface {
	ClassifyContent(ctx context.Context, content string) (string, error)
	ExtractTags(ctx context.Context, content string) ([]string, error)
}

// Server exposes the two AI endpoints over HTTP.
type Server struct {
	ai     ContentAI
	addr   string
	logger *slog.Logger
}

// NewServer creates an AI service server
func NewServer(ai ContentAI, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{ai: ai, addr: addr, logger: logger}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.logger.Info("starting AI service", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// Handler returns the routed handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /classify-content", s.classifyContent)
	mux.HandleFunc("POST /classify-content-gemini", s.extractTags)
	mux.HandleFunc("GET /health", s.health)
	return withCORS(mux)
}

// withCORS adds CORS headers and handles preflight, as the hosted
// functions this service replaces did.
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type contentRequest struct {
	Content string `json:"content"`
}

func (s *Server) classifyContent(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Info("received content for classification", "length", len(req.Content))

	zone, err := s.ai.ClassifyContent(r.Context(), req.Content)
	if err != nil {
		s.logger.Error("classification failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"classification": zone})
}

func (s *Server) extractTags(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Info("received content for tag extraction", "length", len(req.Content))

	tags, err := s.ai.ExtractTags(r.Context(), req.Content)
	if err != nil {
		s.logger.Error("tag extraction failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"tags": strings.Join(tags, ", ")})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
