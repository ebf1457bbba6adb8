package core

import (
	"strings"
	"time"

	"github.com/ebetancourt/luna/pkg/models"
)

// maxGuidingQuestions is the hard cap on clarifying questions per session.
// Reaching it forces completion regardless of input content.
const maxGuidingQuestions = 2

// ConfirmationMessage is the fixed reply emitted when a session completes.
const ConfirmationMessage = "Great, saving this entry!"

// Session is the ephemeral state of one guided journaling interaction. It
// accumulates the user's free-form text, tracks how many guiding questions
// have been asked, and detects the completion signal. It is not safe for
// concurrent use; callers serialize access per session.
type Session struct {
	started   time.Time
	buffer    []string
	questions int
	picker    *questionPicker
	state     models.SessionState
}

// NewSession creates a session in the AwaitingInput state.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		started: now,
		picker:  newQuestionPicker(now.Minute()),
		state:   models.StateAwaitingInput,
	}
}

// StepResult is the sequencer's reaction to one piece of user input: either
// a guiding question, or completion.
type StepResult struct {
	State    models.SessionState
	Question string // set when State is StateQuestionAsked
}

// isCompletionSignal reports whether input ends the guided-prompt loop:
// empty input, or a case-insensitive "i'm done" (apostrophe optional).
func isCompletionSignal(input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return true
	}
	lower := strings.ToLower(trimmed)
	return lower == "i'm done" || lower == "im done"
}

// Step feeds one user message into the state machine. Non-empty text is
// appended to the session buffer. While fewer than two questions have been
// asked and no completion signal is seen, Step emits the next guiding
// question; otherwise the session moves to Completed.
func (s *Session) Step(input string) StepResult {
	if s.state == models.StateCompleted {
		return StepResult{State: models.StateCompleted}
	}

	done := isCompletionSignal(input)
	if !done {
		s.buffer = append(s.buffer, strings.TrimSpace(input))
	}

	if done || s.questions >= maxGuidingQuestions {
		s.state = models.StateCompleted
		return StepResult{State: models.StateCompleted}
	}

	s.questions++
	s.state = models.StateQuestionAsked
	return StepResult{
		State:    models.StateQuestionAsked,
		Question: s.picker.Pick(),
	}
}

// State returns the current session state.
func (s *Session) State() models.SessionState {
	return s.state
}

// QuestionsAsked returns how many guiding questions have been emitted.
func (s *Session) QuestionsAsked() int {
	return s.questions
}

// Text returns the accumulated entry text: the user's inputs across the
// guided-prompt loop joined by blank lines.
func (s *Session) Text() string {
	return strings.Join(s.buffer, "\n\n")
}

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time {
	return s.started
}
