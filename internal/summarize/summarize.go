// Package summarize produces condensed summaries of journal entries through
// an external completion model, enforcing a length-ratio ceiling with a
// bounded retry budget. Summarization is a strict enhancement: callers treat
// every error here as non-fatal to entry persistence.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ebetancourt/luna/pkg/models"
)

var (
	// ErrSummarizationUnavailable means the completion backend failed
	// (timeout, transport, malformed response) on every attempt.
	ErrSummarizationUnavailable = errors.New("summarization unavailable")

	// ErrSummaryExceededRatio means no attempt produced a summary under the
	// configured ratio ceiling.
	ErrSummaryExceededRatio = errors.New("summary exceeded length ratio")
)

// CompletionClient is the narrow interface over the completion backend.
// Implemented by the OpenAI adapter in this package; tests use stubs.
type CompletionClient interface {
	Complete(ctx context.Context, instructions, input string) (string, error)
}

// Service implements the summarization policy: request, check ratio, retry
// with a stricter instruction, give up after the attempt budget.
type Service struct {
	client      CompletionClient
	maxRatio    float64
	maxAttempts int
	timeout     time.Duration
}

// NewService creates a summarization Service using the journaling policy
// settings. timeout bounds each individual attempt.
func NewService(client CompletionClient, cfg models.JournalingConfig, timeout time.Duration) *Service {
	return &Service{
		client:      client,
		maxRatio:    cfg.SummaryRatio,
		maxAttempts: cfg.MaxSummaryAttempts,
		timeout:     timeout,
	}
}

// Summarize returns a condensed version of text whose word count is strictly
// under maxRatio times the source word count. It retries up to the attempt
// budget (including the first attempt), tightening the instruction after a
// ratio rejection. There is no backoff between attempts; the budget is the
// sole retry mechanism.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	sourceWords := len(strings.Fields(text))
	if sourceWords == 0 {
		return "", fmt.Errorf("cannot summarize empty text")
	}
	budget := int(float64(sourceWords) * s.maxRatio)

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		instructions := summaryInstructions
		if attempt > 1 && errors.Is(lastErr, ErrSummaryExceededRatio) {
			instructions += fmt.Sprintf(stricterSuffix, budget)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		raw, err := s.client.Complete(attemptCtx, instructions, text)
		cancel()
		if err != nil {
			lastErr = fmt.Errorf("%w: attempt %d: %v", ErrSummarizationUnavailable, attempt, err)
			continue
		}

		summary := normalizeSummary(raw)
		if summary == "" {
			lastErr = fmt.Errorf("%w: attempt %d produced no text", ErrSummarizationUnavailable, attempt)
			continue
		}

		if float64(len(strings.Fields(summary))) >= float64(sourceWords)*s.maxRatio {
			lastErr = fmt.Errorf("%w: attempt %d produced %d words for a %d-word entry",
				ErrSummaryExceededRatio, attempt, len(strings.Fields(summary)), sourceWords)
			continue
		}
		return summary, nil
	}
	return "", lastErr
}

// hedgingPrefixes are boilerplate openers the model tends to produce; they
// add nothing to a personal journal summary.
var hedgingPrefixes = []string{
	"I understand that",
	"Based on the entry,",
	"Based on the entry",
	"In this journal entry,",
	"In this journal entry",
	"This entry",
	"In summary,",
	"In summary",
	"To summarize,",
	"To summarize",
}

// normalizeSummary trims the model output, strips hedging openers, and
// capitalizes the first letter.
func normalizeSummary(raw string) string {
	summary := strings.TrimSpace(raw)
	for _, prefix := range hedgingPrefixes {
		if strings.HasPrefix(summary, prefix) {
			summary = strings.TrimSpace(strings.TrimPrefix(summary, prefix))
		}
	}
	if summary == "" {
		return ""
	}
	runes := []rune(summary)
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}

// ExtractiveService summarizes without a completion backend by picking key
// sentences from the entry. Used when no API key is configured.
type ExtractiveService struct {
	maxRatio float64
}

// NewExtractiveService creates an extractive summarizer honoring the same
// ratio ceiling as the model-backed Service.
func NewExtractiveService(cfg models.JournalingConfig) *ExtractiveService {
	return &ExtractiveService{maxRatio: cfg.SummaryRatio}
}

// Summarize returns an extractive summary of text, or ErrSummaryExceededRatio
// when even the extracted sentences are over the ceiling.
func (s *ExtractiveService) Summarize(_ context.Context, text string) (string, error) {
	sourceWords := len(strings.Fields(text))
	if sourceWords == 0 {
		return "", fmt.Errorf("cannot summarize empty text")
	}

	summary := FallbackSummary(text)
	if float64(len(strings.Fields(summary))) >= float64(sourceWords)*s.maxRatio {
		return "", fmt.Errorf("%w: extractive summary has %d words for a %d-word entry",
			ErrSummaryExceededRatio, len(strings.Fields(summary)), sourceWords)
	}
	return summary, nil
}

// FallbackSummary builds an extractive summary from the first, middle, and
// last sentences of text. Used when no completion backend is configured; the
// caller still applies the ratio gate.
func FallbackSummary(text string) string {
	flat := strings.ReplaceAll(text, "\n", " ")
	var sentences []string
	for _, s := range strings.Split(flat, ".") {
		s = strings.TrimSpace(s)
		if len(s) > 10 {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) <= 3 {
		return strings.TrimSpace(text)
	}

	key := []string{sentences[0]}
	if len(sentences) >= 5 {
		key = append(key, sentences[len(sentences)/2])
	}
	key = append(key, sentences[len(sentences)-1])

	out := strings.Join(key, ". ")
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}
