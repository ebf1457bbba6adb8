package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ebetancourt/luna/pkg/models"
)

// fakeStore records appended entries and summaries in memory.
type fakeStore struct {
	entries    []string
	summaries  []string
	entryErr   error
	summaryErr error
}

func (f *fakeStore) EnsureReady() error { return nil }

func (f *fakeStore) AppendEntry(_, _ time.Time, text string) error {
	if f.entryErr != nil {
		return f.entryErr
	}
	f.entries = append(f.entries, text)
	return nil
}

func (f *fakeStore) AppendSummary(_, _ time.Time, summary string) error {
	if f.summaryErr != nil {
		return f.summaryErr
	}
	f.summaries = append(f.summaries, summary)
	return nil
}

// fakeSummarizer returns a fixed summary or error.
type fakeSummarizer struct {
	summary string
	err     error
	calls   int
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

// captureLogger collects logged event types.
type captureLogger struct {
	types []string
}

func (c *captureLogger) LogEvent(eventType string, _ map[string]any) {
	c.types = append(c.types, eventType)
}

func testPolicy() models.JournalingConfig {
	return models.JournalingConfig{
		WordCountThreshold:   10,
		SummaryRatio:         0.5,
		SummarizationEnabled: true,
		SummaryMinWords:      5,
		MaxSummaryAttempts:   3,
	}
}

func completeSession(s *Session, text string) {
	s.Step(text)
	s.Step("")
}

func TestOrchestrator_SavesAndConfirms(t *testing.T) {
	store := &fakeStore{}
	events := &captureLogger{}
	o := NewOrchestrator(testPolicy(), store, nil, events)

	s := NewSession()
	result := o.HandleTurn(context.Background(), s, "went for a run this morning")
	if result.Kind != models.TurnQuestion {
		t.Fatalf("expected a guiding question, got %+v", result)
	}

	result = o.HandleTurn(context.Background(), s, "")
	if result.Kind != models.TurnCompleted {
		t.Fatalf("expected completion, got %+v", result)
	}
	if result.Reply != ConfirmationMessage {
		t.Errorf("reply = %q, want the fixed confirmation", result.Reply)
	}
	if !result.Saved {
		t.Error("expected Saved to be true")
	}
	if len(store.entries) != 1 || store.entries[0] != "went for a run this morning" {
		t.Errorf("stored entries = %v", store.entries)
	}
	if len(events.types) == 0 || events.types[0] != "entry.saved" {
		t.Errorf("logged events = %v, want entry.saved first", events.types)
	}
}

func TestOrchestrator_FailedSaveNeverConfirms(t *testing.T) {
	store := &fakeStore{entryErr: errors.New("disk full")}
	o := NewOrchestrator(testPolicy(), store, nil, nil)

	s := NewSession()
	completeSession(s, "some words to save")

	result := o.HandleTurn(context.Background(), s, "")
	if result.Reply == ConfirmationMessage {
		t.Fatal("confirmation must not be sent when the save failed")
	}
	if result.Reply != FailedSaveMessage {
		t.Errorf("reply = %q, want the failed-save message", result.Reply)
	}
	if result.Saved {
		t.Error("Saved must be false on failure")
	}
}

func TestOrchestrator_EmptySessionSavesNothing(t *testing.T) {
	store := &fakeStore{}
	o := NewOrchestrator(testPolicy(), store, nil, nil)

	s := NewSession()
	result := o.HandleTurn(context.Background(), s, "")
	if result.Kind != models.TurnCompleted {
		t.Fatalf("expected completion, got %+v", result)
	}
	if result.Saved {
		t.Error("nothing should be saved for an empty session")
	}
	if len(store.entries) != 0 {
		t.Errorf("stored entries = %v, want none", store.entries)
	}
}

func TestOrchestrator_SummarizerFailureDoesNotBlockSave(t *testing.T) {
	store := &fakeStore{}
	events := &captureLogger{}
	summarizer := &fakeSummarizer{err: errors.New("backend down")}
	o := NewOrchestrator(testPolicy(), store, summarizer, events)

	long := strings.Repeat("word ", 50)
	s := NewSession()
	completeSession(s, long)

	result := o.HandleTurn(context.Background(), s, "")
	if result.Reply != ConfirmationMessage {
		t.Fatalf("reply = %q, entry save must still confirm", result.Reply)
	}
	if result.Summarized {
		t.Error("Summarized must be false when the summarizer failed")
	}
	if len(store.entries) != 1 {
		t.Fatalf("entry not stored: %v", store.entries)
	}
	if len(store.summaries) != 0 {
		t.Errorf("no summary should be stored, got %v", store.summaries)
	}

	skipped := false
	for _, typ := range events.types {
		if typ == "summary.skipped" {
			skipped = true
		}
	}
	if !skipped {
		t.Errorf("expected a summary.skipped event, got %v", events.types)
	}
}

func TestOrchestrator_SummarizesLongEntries(t *testing.T) {
	store := &fakeStore{}
	summarizer := &fakeSummarizer{summary: "Ran and reflected."}
	o := NewOrchestrator(testPolicy(), store, summarizer, nil)

	long := strings.Repeat("word ", 50)
	summarized, err := o.SaveEntry(context.Background(), time.Now(), long)
	if err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}
	if !summarized {
		t.Error("expected the long entry to be summarized")
	}
	if len(store.summaries) != 1 || store.summaries[0] != "Ran and reflected." {
		t.Errorf("stored summaries = %v", store.summaries)
	}
}

func TestOrchestrator_ShortEntryNotSummarized(t *testing.T) {
	store := &fakeStore{}
	summarizer := &fakeSummarizer{summary: "unused"}
	o := NewOrchestrator(testPolicy(), store, summarizer, nil)

	summarized, err := o.SaveEntry(context.Background(), time.Now(), "just a few words")
	if err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}
	if summarized {
		t.Error("short entry must not be summarized")
	}
	if summarizer.calls != 0 {
		t.Errorf("summarizer called %d times, want 0", summarizer.calls)
	}
}

func TestOrchestrator_SummaryAppendFailureKeepsEntry(t *testing.T) {
	store := &fakeStore{summaryErr: errors.New("disk full")}
	summarizer := &fakeSummarizer{summary: "A summary."}
	o := NewOrchestrator(testPolicy(), store, summarizer, nil)

	long := strings.Repeat("word ", 50)
	summarized, err := o.SaveEntry(context.Background(), time.Now(), long)
	if err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}
	if summarized {
		t.Error("Summarized must be false when the summary append failed")
	}
	if len(store.entries) != 1 {
		t.Errorf("entry must remain durable, got %v", store.entries)
	}
}

func TestOrchestrator_SaveEntryRejectsEmpty(t *testing.T) {
	o := NewOrchestrator(testPolicy(), &fakeStore{}, nil, nil)
	if _, err := o.SaveEntry(context.Background(), time.Now(), "   "); err == nil {
		t.Fatal("expected an error for empty entry text")
	}
}
