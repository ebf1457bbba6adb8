package models

// SessionState identifies where a guided journaling session is in its
// question-asking loop.
type SessionState string

const (
	// StateAwaitingInput means the session has not yet received any text.
	StateAwaitingInput SessionState = "awaiting_input"
	// StateQuestionAsked means a guiding question is outstanding.
	StateQuestionAsked SessionState = "question_asked"
	// StateCompleted means the session reached its completion signal and the
	// buffered text is ready to persist.
	StateCompleted SessionState = "completed"
)

// TurnKind distinguishes the two possible replies a journaling turn produces.
type TurnKind string

const (
	// TurnQuestion means the reply is a guiding question and the session
	// stays alive.
	TurnQuestion TurnKind = "question"
	// TurnCompleted means the session finished and the reply is a
	// confirmation or failure message.
	TurnCompleted TurnKind = "completed"
)

// TurnResult is the orchestrator's answer to one user message.
type TurnResult struct {
	Kind  TurnKind
	Reply string
	// Saved reports whether the entry was durably written. Only meaningful
	// when Kind is TurnCompleted.
	Saved bool
	// Summarized reports whether a summary section was appended.
	Summarized bool
}
