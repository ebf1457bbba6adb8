package core

import (
	"context"
	"fmt"
	"time"

	"github.com/ebetancourt/luna/pkg/models"
)

// EntryStore is the narrow storage interface the orchestrator persists
// entries through. It is implemented by the journal file store; keeping it
// narrow lets storage be swapped for a database without touching this
// package.
type EntryStore interface {
	EnsureReady() error
	AppendEntry(date time.Time, ts time.Time, text string) error
	AppendSummary(date time.Time, ts time.Time, summary string) error
}

// Summarizer produces a condensed version of an entry, honoring the
// configured length-ratio ceiling and attempt budget internally.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// EventLogger records observable events from the journaling flow. A nil
// logger disables observability.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any)
}

// FailedSaveMessage is the reply prefix when an entry cannot be persisted.
const FailedSaveMessage = "I couldn't save your entry, so nothing was written. Please try again in a moment."

// emptySessionMessage is the reply when a session completes with no text.
const emptySessionMessage = "Nothing to save this time. I'm here whenever you want to reflect."

// Orchestrator ties the sequencer, file store, analyzer, and summarizer
// together into complete journaling turns.
type Orchestrator struct {
	cfg        models.JournalingConfig
	store      EntryStore
	summarizer Summarizer
	events     EventLogger
	now        func() time.Time
}

// NewOrchestrator creates an Orchestrator. summarizer may be nil when
// summarization is disabled; events may be nil.
func NewOrchestrator(cfg models.JournalingConfig, store EntryStore, summarizer Summarizer, events EventLogger) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		store:      store,
		summarizer: summarizer,
		events:     events,
		now:        time.Now,
	}
}

// Policy returns the journaling policy the orchestrator runs under.
func (o *Orchestrator) Policy() models.JournalingConfig {
	return o.cfg
}

// HandleTurn feeds one user message into the session. If the sequencer emits
// a question it is returned as the reply and the session stays alive. On
// completion the buffered entry is persisted, optionally summarized, and the
// fixed confirmation is returned. Storage failures surface as a failed-save
// reply, never a false confirmation; summarizer failures never block the
// confirmation.
func (o *Orchestrator) HandleTurn(ctx context.Context, session *Session, input string) models.TurnResult {
	step := session.Step(input)
	if step.State == models.StateQuestionAsked {
		return models.TurnResult{Kind: models.TurnQuestion, Reply: step.Question}
	}

	text := session.Text()
	if text == "" {
		return models.TurnResult{Kind: models.TurnCompleted, Reply: emptySessionMessage}
	}

	ts := o.now()
	if err := o.store.AppendEntry(ts, ts, text); err != nil {
		o.logEvent("entry.save_failed", map[string]any{"error": err.Error()})
		return models.TurnResult{
			Kind:  models.TurnCompleted,
			Reply: FailedSaveMessage,
		}
	}
	o.logEvent("entry.saved", map[string]any{
		"date":  ts.Format("2006-01-02"),
		"words": WordCount(text),
	})

	summarized := o.maybeSummarize(ctx, ts, text)

	return models.TurnResult{
		Kind:       models.TurnCompleted,
		Reply:      ConfirmationMessage,
		Saved:      true,
		Summarized: summarized,
	}
}

// SaveEntry persists a one-shot entry outside a guided session, applying the
// same summarization policy. Used by the save CLI command, the MCP tools,
// and the weekly review flow.
func (o *Orchestrator) SaveEntry(ctx context.Context, ts time.Time, text string) (summarized bool, err error) {
	if WordCount(text) == 0 {
		return false, fmt.Errorf("cannot save an empty journal entry")
	}
	if ts.IsZero() {
		ts = o.now()
	}
	if err := o.store.AppendEntry(ts, ts, text); err != nil {
		o.logEvent("entry.save_failed", map[string]any{"error": err.Error()})
		return false, err
	}
	o.logEvent("entry.saved", map[string]any{
		"date":  ts.Format("2006-01-02"),
		"words": WordCount(text),
	})
	return o.maybeSummarize(ctx, ts, text), nil
}

// maybeSummarize generates and appends a summary when the policy calls for
// one. Failures are logged and swallowed: summarization is a strict
// enhancement, never a precondition for the save.
func (o *Orchestrator) maybeSummarize(ctx context.Context, ts time.Time, text string) bool {
	if o.summarizer == nil || !NeedsSummary(text, o.cfg) {
		return false
	}

	summary, err := o.summarizer.Summarize(ctx, text)
	if err != nil {
		o.logEvent("summary.skipped", map[string]any{"error": err.Error()})
		return false
	}

	if err := o.store.AppendSummary(ts, ts, summary); err != nil {
		// The entry itself is already durable; only the summary is lost.
		o.logEvent("summary.append_failed", map[string]any{"error": err.Error()})
		return false
	}
	o.logEvent("summary.generated", map[string]any{
		"date":  ts.Format("2006-01-02"),
		"words": WordCount(summary),
	})
	return true
}

func (o *Orchestrator) logEvent(eventType string, data map[string]any) {
	if o.events != nil {
		o.events.LogEvent(eventType, data)
	}
}
