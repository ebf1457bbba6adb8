package core

// questionBank holds the fixed guiding questions a journaling session may
// ask. The CBT-style wording mirrors the prompts Luna uses in conversation.
var questionBank = []string{
	"What emotions came up for you while that was happening?",
	"What did this teach you, or what would you do differently next time?",
	"What mattered most to you today?",
	"What would you want to remember from this a year from now?",
	"What would tomorrow-you thank today-you for doing?",
}

// questionPicker hands out guiding questions, rotating through the bank so a
// question is never repeated within one session.
type questionPicker struct {
	next int
}

// newQuestionPicker returns a picker whose rotation starts at offset. The
// offset is normally derived from the session start time so consecutive
// sessions do not always open with the same question.
func newQuestionPicker(offset int) *questionPicker {
	if offset < 0 {
		offset = -offset
	}
	return &questionPicker{next: offset % len(questionBank)}
}

// Pick returns the next unused question from the bank.
func (p *questionPicker) Pick() string {
	q := questionBank[p.next%len(questionBank)]
	p.next++
	return q
}
