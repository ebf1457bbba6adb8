package core

import (
	"strings"

	"github.com/ebetancourt/luna/pkg/models"
)

// WordCount returns the number of whitespace-separated non-empty tokens in
// text. Consecutive spaces, tabs, and newlines count as one separator.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// NeedsSummary reports whether an entry qualifies for summarization under the
// given policy: summarization enabled, strictly more words than the
// threshold, and at least the minimum word floor. The floor guards against
// degenerate ratio math right at the threshold boundary.
func NeedsSummary(text string, cfg models.JournalingConfig) bool {
	if !cfg.SummarizationEnabled {
		return false
	}
	n := WordCount(text)
	return n > cfg.WordCountThreshold && n >= cfg.SummaryMinWords
}
