package core

import (
	"testing"

	"github.com/ebetancourt/luna/pkg/models"
)

func TestSession_QuestionCap(t *testing.T) {
	s := NewSession()

	step := s.Step("today I worked on the garden")
	if step.State != models.StateQuestionAsked || step.Question == "" {
		t.Fatalf("expected first question, got state=%v question=%q", step.State, step.Question)
	}

	step = s.Step("it felt good to be outside")
	if step.State != models.StateQuestionAsked || step.Question == "" {
		t.Fatalf("expected second question, got state=%v question=%q", step.State, step.Question)
	}

	// Third substantive answer must complete the session: two questions max.
	step = s.Step("and that is all I have to say")
	if step.State != models.StateCompleted {
		t.Fatalf("expected completion after two questions, got %v", step.State)
	}
	if s.QuestionsAsked() != 2 {
		t.Errorf("QuestionsAsked = %d, want 2", s.QuestionsAsked())
	}
}

func TestSession_CompletionSignals(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"whitespace input", "   \t "},
		{"lowercase done", "i'm done"},
		{"mixed case done", "I'M Done"},
		{"no apostrophe", "im done"},
		{"padded done", "  I'm done  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			s.Step("something on my mind")

			step := s.Step(tt.input)
			if step.State != models.StateCompleted {
				t.Errorf("Step(%q) state = %v, want Completed", tt.input, step.State)
			}
		})
	}
}

func TestSession_CompletionSignalOnFirstInput(t *testing.T) {
	s := NewSession()
	step := s.Step("")
	if step.State != models.StateCompleted {
		t.Fatalf("expected immediate completion, got %v", step.State)
	}
	if s.Text() != "" {
		t.Errorf("expected empty text, got %q", s.Text())
	}
}

func TestSession_SignalTextNotBuffered(t *testing.T) {
	s := NewSession()
	s.Step("real content here")
	s.Step("I'm done")

	if got := s.Text(); got != "real content here" {
		t.Errorf("Text() = %q, completion signal must not be saved", got)
	}
}

func TestSession_TextJoinsAnswers(t *testing.T) {
	s := NewSession()
	s.Step("first thought")
	s.Step("second thought")
	s.Step("third thought")

	want := "first thought\n\nsecond thought\n\nthird thought"
	if got := s.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestSession_StepAfterCompletion(t *testing.T) {
	s := NewSession()
	s.Step("")

	step := s.Step("late arrival")
	if step.State != models.StateCompleted {
		t.Errorf("expected completed session to stay completed, got %v", step.State)
	}
	if s.Text() != "" {
		t.Errorf("input after completion must not be buffered, got %q", s.Text())
	}
}

func TestQuestionPicker_NoImmediateRepeat(t *testing.T) {
	p := newQuestionPicker(0)
	seen := make(map[string]bool)
	for i := 0; i < len(questionBank); i++ {
		q := p.Pick()
		if seen[q] {
			t.Fatalf("question %q repeated within one rotation", q)
		}
		seen[q] = true
	}
}
