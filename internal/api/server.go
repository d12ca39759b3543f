// Package api is the HTTP surface of the feed service: posts, one-off
// classification, and per-session zone/timer controllers.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"zonegram/internal/classifier"
	"zonegram/internal/domain"
	"zonegram/internal/feed"
	"zonegram/internal/fetcher"
	"zonegram/internal/store"
	"zonegram/internal/timer"
)

// Server handles HTTP requests for the feed API
type Server struct {
	store  *store.Store
	feed   *feed.Service
	clf    *classifier.Classifier
	addr   string
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*timer.Controller
}

// New creates a new API server
func New(st *store.Store, fd *feed.Service, clf *classifier.Classifier, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:    st,
		feed:     fd,
		clf:      clf,
		addr:     addr,
		logger:   logger,
		sessions: make(map[string]*timer.Controller),
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.logger.Info("starting server", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// Handler returns the routed handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Posts
	mux.HandleFunc("GET /posts", s.listPosts)
	mux.HandleFunc("POST /posts", s.addPost)
	mux.HandleFunc("POST /posts/{id}/like", s.likePost)
	mux.HandleFunc("DELETE /posts/{id}/like", s.unlikePost)

	// Classification
	mux.HandleFunc("POST /classify", s.classify)

	// Zone/timer sessions
	mux.HandleFunc("POST /sessions", s.createSession)
	mux.HandleFunc("GET /sessions/{id}", s.getSession)
	mux.HandleFunc("POST /sessions/{id}/duration", s.setDuration)
	mux.HandleFunc("POST /sessions/{id}/switch", s.switchZone)
	mux.HandleFunc("DELETE /sessions/{id}", s.deleteSession)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

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

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	zone := domain.Normalize(r.URL.Query().Get("zone"))

	posts, filtered, err := s.feed.Visible(zone)
	if err != nil {
		s.logger.Error("feed fetch failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "couldn't load posts, please refresh")
		return
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"posts":    posts,
		"zone":     zone,
		"filtered": filtered,
	})
}

// AddPostRequest is the request body for creating a post
type AddPostRequest struct {
	Username   string `json:"username"`
	UserImage  string `json:"user_image,omitempty"`
	Image      string `json:"image,omitempty"`
	Caption    string `json:"caption"`
	CustomZone string `json:"custom_zone,omitempty"`
	NoClassify bool   `json:"no_classify,omitempty"`
}

// AddPostResponse is the response for creating a post
type AddPostResponse struct {
	Post           *domain.Post                 `json:"post"`
	Classification *domain.ClassificationResult `json:"classification,omitempty"`
}

func (s *Server) addPost(w http.ResponseWriter, r *http.Request) {
	var req AddPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Caption) == "" {
		writeError(w, http.StatusBadRequest, "caption is required")
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	post, err := s.store.AddPost(domain.Post{
		Username:   req.Username,
		UserImage:  req.UserImage,
		Image:      req.Image,
		Caption:    req.Caption,
		CustomZone: req.CustomZone,
	})
	if err != nil {
		s.logger.Error("add post failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "couldn't save the post")
		return
	}

	resp := AddPostResponse{Post: post}

	// Classify unless disabled. A link caption is resolved to page text
	// first so the classifier sees content, not a URL.
	if !req.NoClassify {
		text := req.Caption
		if fetcher.IsURL(text) {
			if fetched, err := fetcher.Fetch(r.Context(), text); err == nil {
				text = fetched
			} else {
				s.logger.Info("caption fetch failed, classifying the bare link", "error", err)
			}
		}

		result, err := s.clf.Classify(r.Context(), text, req.CustomZone)
		if err == nil {
			if err := s.store.SetClassification(post.ID, result); err != nil {
				s.logger.Error("persist classification failed", "error", err)
			} else if refreshed, err := s.store.GetPost(post.ID); err == nil {
				resp.Post = refreshed
			}
			resp.Classification = result
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) likePost(w http.ResponseWriter, r *http.Request) {
	s.adjustLikes(w, r, s.store.LikePost)
}

func (s *Server) unlikePost(w http.ResponseWriter, r *http.Request) {
	s.adjustLikes(w, r, s.store.UnlikePost)
}

func (s *Server) adjustLikes(w http.ResponseWriter, r *http.Request, op func(string) error) {
	id := r.PathValue("id")
	if err := op(id); err != nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	post, err := s.store.GetPost(id)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "couldn't load the post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// ClassifyRequest is the request body for one-off classification
type ClassifyRequest struct {
	Text       string `json:"text"`
	CustomZone string `json:"custom_zone,omitempty"`
}

func (s *Server) classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.clf.Classify(r.Context(), req.Text, req.CustomZone)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "classification unavailable")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// CreateSessionRequest starts a zone/timer session
type CreateSessionRequest struct {
	Zone string `json:"zone"`
}

// SessionView is the wire form of a session's timer state
type SessionView struct {
	ID            string         `json:"id"`
	Phase         string         `json:"phase"`
	Zone          domain.Zone    `json:"zone,omitempty"`
	Remaining     int            `json:"remaining,omitempty"`
	Configured    timer.Duration `json:"configured"`
	Notifications []string       `json:"notifications,omitempty"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctrl := timer.NewController(nil, nil, s.logger)
	if err := ctrl.SelectZone(req.Zone); err != nil {
		ctrl.Close()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = ctrl
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, s.sessionView(id, ctrl))
}

func (s *Server) session(r *http.Request) (string, *timer.Controller) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	return id, s.sessions[id]
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, ctrl := s.session(r)
	if ctrl == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, s.sessionView(id, ctrl))
}

// SetDurationRequest starts the countdown for a session
type SetDurationRequest struct {
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

func (s *Server) setDuration(w http.ResponseWriter, r *http.Request) {
	id, ctrl := s.session(r)
	if ctrl == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req SetDurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ctrl.SetDuration(req.Minutes, req.Seconds); err != nil {
		var verr *timer.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.sessionView(id, ctrl))
}

func (s *Server) switchZone(w http.ResponseWriter, r *http.Request) {
	id, ctrl := s.session(r)
	if ctrl == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	if err := ctrl.Switch(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.sessionView(id, ctrl))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	ctrl := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ctrl == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	ctrl.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionView(id string, ctrl *timer.Controller) SessionView {
	st := ctrl.State()
	return SessionView{
		ID:            id,
		Phase:         st.Phase.String(),
		Zone:          st.Zone,
		Remaining:     st.Remaining,
		Configured:    st.Configured,
		Notifications: ctrl.Notifications(),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
