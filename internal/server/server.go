// Package server exposes the journaling agent over a small JSON HTTP API so
// web frontends can drive the same guided sessions as the terminal chat.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ebetancourt/luna/internal/core"
	"github.com/ebetancourt/luna/pkg/models"
)

// sessionIdleTimeout is how long an inactive chat session is kept before the
// registry prunes it.
const sessionIdleTimeout = 30 * time.Minute

// chatSession pairs a guided session with its own lock; HandleTurn mutates
// session state, so concurrent requests for one session must serialize.
type chatSession struct {
	mu         sync.Mutex
	session    *core.Session
	lastActive time.Time
}

// Server is the HTTP API over the journaling orchestrator.
type Server struct {
	orch   *core.Orchestrator
	events core.EventLogger

	mu       sync.Mutex
	sessions map[string]*chatSession
	now      func() time.Time
}

// New creates a Server. events may be nil.
func New(orch *core.Orchestrator, events core.EventLogger) *Server {
	return &Server{
		orch:     orch,
		events:   events,
		sessions: make(map[string]*chatSession),
		now:      time.Now,
	}
}

// Handler returns the routed http.Handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat", s.handleChat)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

// ListenAndServe runs the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	}
}

// chatRequest is one user message in a chat session. An empty session_id
// starts a new session.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// chatResponse carries the agent's reply. Done means the session is over and
// the session_id is no longer valid.
type chatResponse struct {
	SessionID  string `json:"session_id"`
	Reply      string `json:"reply"`
	Done       bool   `json:"done"`
	Saved      bool   `json:"saved,omitempty"`
	Summarized bool   `json:"summarized,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	id, cs, err := s.lookupSession(req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	cs.mu.Lock()
	result := s.orch.HandleTurn(r.Context(), cs.session, req.Message)
	cs.lastActive = s.now()
	cs.mu.Unlock()

	done := result.Kind == models.TurnCompleted
	if done {
		s.dropSession(id)
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:  id,
		Reply:      result.Reply,
		Done:       done,
		Saved:      result.Saved,
		Summarized: result.Summarized,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// lookupSession returns the existing session for id, or registers a new one
// when id is empty. Unknown ids are an error so clients notice expiry.
func (s *Server) lookupSession(id string) (string, *chatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	if id == "" {
		id = newSessionID()
		cs := &chatSession{session: core.NewSession(), lastActive: s.now()}
		s.sessions[id] = cs
		if s.events != nil {
			s.events.LogEvent("session.started", map[string]any{"session_id": id, "transport": "http"})
		}
		return id, cs, nil
	}

	cs, ok := s.sessions[id]
	if !ok {
		return "", nil, fmt.Errorf("unknown or expired session %s", id)
	}
	return id, cs, nil
}

func (s *Server) dropSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// pruneLocked drops sessions idle past the timeout. Caller holds s.mu.
func (s *Server) pruneLocked() {
	cutoff := s.now().Add(-sessionIdleTimeout)
	for id, cs := range s.sessions {
		if cs.lastActive.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

func newSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
