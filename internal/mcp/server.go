// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the journaling agent as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ebetancourt/luna/internal/core"
	"github.com/ebetancourt/luna/internal/observability"
	"github.com/ebetancourt/luna/internal/storage"
	"github.com/ebetancourt/luna/pkg/models"
)

// Server wraps Luna services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	orch        *core.Orchestrator
	store       storage.JournalStore
	metricsCalc observability.MetricsCalculator
}

// NewServer creates an MCP server with the given dependencies. metricsCalc
// may be nil if observability is disabled.
func NewServer(orch *core.Orchestrator, store storage.JournalStore, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		orch:        orch,
		store:       store,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "luna", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type saveEntryInput struct {
	Text string `json:"text" jsonschema:"required,the journal entry text to save"`
}

type saveEntryOutput struct {
	Date       string `json:"date"`
	Saved      bool   `json:"saved"`
	Summarized bool   `json:"summarized"`
	WordCount  int    `json:"word_count"`
	Message    string `json:"message"`
}

type countWordsInput struct {
	Text string `json:"text" jsonschema:"required,the text to count words in"`
}

type countWordsOutput struct {
	WordCount    int  `json:"word_count"`
	NeedsSummary bool `json:"needs_summary"`
}

type searchJournalInput struct {
	Keywords  []string `json:"keywords,omitempty" jsonschema:"keywords to search entry text and frontmatter for"`
	Mood      string   `json:"mood,omitempty" jsonschema:"mood to match against entry frontmatter"`
	Topics    []string `json:"topics,omitempty" jsonschema:"topics to match against entry frontmatter"`
	StartDate string   `json:"start_date,omitempty" jsonschema:"inclusive start date in YYYY-MM-DD format"`
	EndDate   string   `json:"end_date,omitempty" jsonschema:"inclusive end date in YYYY-MM-DD format"`
}

type searchResultOutput struct {
	Date      string   `json:"date"`
	FilePath  string   `json:"file_path"`
	WordCount int      `json:"word_count"`
	Mood      string   `json:"mood,omitempty"`
	Topics    []string `json:"topics,omitempty"`
	Score     int      `json:"score,omitempty"`
}

type searchJournalOutput struct {
	Results []searchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	EntriesSaved       int    `json:"entries_saved"`
	SavesFailed        int    `json:"saves_failed"`
	SummariesGenerated int    `json:"summaries_generated"`
	SummariesSkipped   int    `json:"summaries_skipped"`
	SessionsStarted    int    `json:"sessions_started"`
	ReviewsCompleted   int    `json:"reviews_completed"`
	EventCount         int    `json:"event_count"`
	OldestEvent        string `json:"oldest_event,omitempty"`
	NewestEvent        string `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "save_journal_entry",
		Description: "Save a journal entry to today's daily file. Long entries are summarized automatically per the configured policy.",
	}, s.handleSaveEntry)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "count_words",
		Description: "Count whitespace-separated words in a text and report whether it would trigger summarization.",
	}, s.handleCountWords)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "search_journal",
		Description: "Search journal entries by keywords, mood, topics, or date range. Provide exactly one filter kind.",
	}, s.handleSearchJournal)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated journaling metrics from the event log: entries saved, summaries generated, sessions started.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleSaveEntry(ctx context.Context, _ *gomcp.CallToolRequest, input saveEntryInput) (*gomcp.CallToolResult, saveEntryOutput, error) {
	if core.WordCount(input.Text) == 0 {
		return errorResult("text is required"), saveEntryOutput{}, nil
	}

	ts := time.Now()
	summarized, err := s.orch.SaveEntry(ctx, ts, input.Text)
	if err != nil {
		return errorResult(fmt.Sprintf("saving entry: %s", err)), saveEntryOutput{}, nil
	}

	out := saveEntryOutput{
		Date:       ts.Format("2006-01-02"),
		Saved:      true,
		Summarized: summarized,
		WordCount:  core.WordCount(input.Text),
		Message:    core.ConfirmationMessage,
	}
	return nil, out, nil
}

func (s *Server) handleCountWords(_ context.Context, _ *gomcp.CallToolRequest, input countWordsInput) (*gomcp.CallToolResult, countWordsOutput, error) {
	out := countWordsOutput{
		WordCount:    core.WordCount(input.Text),
		NeedsSummary: core.NeedsSummary(input.Text, s.orch.Policy()),
	}
	return nil, out, nil
}

func (s *Server) handleSearchJournal(_ context.Context, _ *gomcp.CallToolRequest, input searchJournalInput) (*gomcp.CallToolResult, searchJournalOutput, error) {
	var (
		results []models.EntryMetadata
		err     error
	)

	switch {
	case len(input.Keywords) > 0:
		results, err = s.store.SearchByKeywords(input.Keywords, false)
	case input.Mood != "":
		results, err = s.store.SearchByMood(input.Mood, false)
	case len(input.Topics) > 0:
		results, err = s.store.SearchByTopics(input.Topics, false)
	case input.StartDate != "" || input.EndDate != "":
		start, perr := parseDate(input.StartDate)
		if perr != nil {
			return errorResult(fmt.Sprintf("parsing start_date: %s", perr)), searchJournalOutput{}, nil
		}
		end, perr := parseDate(input.EndDate)
		if perr != nil {
			return errorResult(fmt.Sprintf("parsing end_date: %s", perr)), searchJournalOutput{}, nil
		}
		results, err = s.store.SearchByDateRange(start, end)
	default:
		return errorResult("provide keywords, mood, topics, or a date range"), searchJournalOutput{}, nil
	}
	if err != nil {
		return errorResult(fmt.Sprintf("searching journal: %s", err)), searchJournalOutput{}, nil
	}

	out := searchJournalOutput{
		Results: make([]searchResultOutput, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		score := r.MatchScore
		if score == 0 {
			score = r.TopicMatchScore
		}
		out.Results[i] = searchResultOutput{
			Date:      r.Date,
			FilePath:  r.FilePath,
			WordCount: r.WordCount,
			Mood:      r.Mood,
			Topics:    r.Topics,
			Score:     score,
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), metricsOutput{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), metricsOutput{}, nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), metricsOutput{}, nil
	}

	out := metricsOutput{
		EntriesSaved:       metrics.EntriesSaved,
		SavesFailed:        metrics.SavesFailed,
		SummariesGenerated: metrics.SummariesGenerated,
		SummariesSkipped:   metrics.SummariesSkipped,
		SessionsStarted:    metrics.SessionsStarted,
		ReviewsCompleted:   metrics.ReviewsCompleted,
		EventCount:         metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseDate parses an optional YYYY-MM-DD string; empty means no bound.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return &t, nil
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
