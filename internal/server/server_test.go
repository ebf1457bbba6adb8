package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ebetancourt/luna/internal/core"
	"github.com/ebetancourt/luna/pkg/models"
)

// memStore keeps appended entries in memory.
type memStore struct {
	entries []string
}

func (m *memStore) EnsureReady() error { return nil }

func (m *memStore) AppendEntry(_, _ time.Time, text string) error {
	m.entries = append(m.entries, text)
	return nil
}

func (m *memStore) AppendSummary(_, _ time.Time, _ string) error { return nil }

func testServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	store := &memStore{}
	cfg := models.JournalingConfig{
		WordCountThreshold:   150,
		SummaryRatio:         0.2,
		SummarizationEnabled: false,
		SummaryMinWords:      20,
		MaxSummaryAttempts:   3,
	}
	return New(core.NewOrchestrator(cfg, store, nil, nil), nil), store
}

func postChat(t *testing.T, handler http.Handler, sessionID, message string) (*httptest.ResponseRecorder, chatResponse) {
	t.Helper()
	body, _ := json.Marshal(chatRequest{SessionID: sessionID, Message: message})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp chatResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return rec, resp
}

func TestChat_EmptySessionIDStartsSession(t *testing.T) {
	srv, _ := testServer(t)
	handler := srv.Handler()

	rec, resp := postChat(t, handler, "", "wrote some code today")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp.SessionID == "" {
		t.Error("expected a generated session_id")
	}
	if resp.Done {
		t.Error("first substantive message should not complete the session")
	}
	if resp.Reply == "" {
		t.Error("expected a guiding question in the reply")
	}
}

func TestChat_SessionRunsToCompletion(t *testing.T) {
	srv, store := testServer(t)
	handler := srv.Handler()

	_, resp := postChat(t, handler, "", "started a new project")
	id := resp.SessionID

	_, resp = postChat(t, handler, id, "")
	if !resp.Done {
		t.Fatalf("expected done after completion signal, got %+v", resp)
	}
	if !resp.Saved {
		t.Error("expected the entry to be saved")
	}
	if resp.Reply != core.ConfirmationMessage {
		t.Errorf("reply = %q, want the confirmation", resp.Reply)
	}
	if len(store.entries) != 1 || store.entries[0] != "started a new project" {
		t.Errorf("stored entries = %v", store.entries)
	}

	// The session is gone once done; reusing its id must 404.
	rec, _ := postChat(t, handler, id, "more text")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status for completed session = %d, want 404", rec.Code)
	}
}

func TestChat_UnknownSessionID(t *testing.T) {
	srv, _ := testServer(t)
	rec, _ := postChat(t, srv.Handler(), "does-not-exist", "hello")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestChat_InvalidJSON(t *testing.T) {
	srv, _ := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChat_IdleSessionsExpire(t *testing.T) {
	srv, _ := testServer(t)
	handler := srv.Handler()

	now := time.Date(2025, 6, 13, 10, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return now }

	_, resp := postChat(t, handler, "", "a first message")
	id := resp.SessionID

	// Advance past the idle timeout; the next lookup prunes the session.
	now = now.Add(sessionIdleTimeout + time.Minute)
	rec, _ := postChat(t, handler, id, "still there?")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status for expired session = %d, want 404", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
