package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ebetancourt/luna/pkg/models"
)

// ReviewStore persists weekly review sessions.
type ReviewStore interface {
	SaveReview(session models.ReviewSession) error
	GetReview(id string) (*models.ReviewSession, error)
	ListReviews(userID string) ([]models.ReviewSession, error)
}

// TaskProvider fetches tasks from a connected task service (Todoist) for the
// "get current" review step.
type TaskProvider interface {
	OpenTasks(ctx context.Context) ([]models.Task, error)
	CompletedSince(ctx context.Context, since time.Time) ([]models.Task, error)
}

// CalendarProvider fetches upcoming events for the calendar review step.
type CalendarProvider interface {
	UpcomingEvents(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error)
}

// reviewStepLabels maps each GTD step to its display name.
var reviewStepLabels = map[models.ReviewStep]string{
	models.StepClear:    "Get Clear (Mind Sweep & Collection)",
	models.StepCurrent:  "Get Current (Review Past Week)",
	models.StepCreative: "Get Creative (Areas of Responsibility)",
	models.StepProjects: "Review Projects List",
	models.StepActions:  "Review Next Actions Lists",
	models.StepCalendar: "Review Calendar & Plan Ahead",
}

// ReviewFlow drives a GTD-style weekly review: tracks progress through the
// six steps, pulls context from task and calendar providers, and persists the
// finished session.
type ReviewFlow struct {
	store    ReviewStore
	tasks    TaskProvider     // nil when no task provider is connected
	calendar CalendarProvider // nil when no calendar is connected
	events   EventLogger
	now      func() time.Time
}

// NewReviewFlow creates a ReviewFlow. tasks, calendar, and events may be nil.
func NewReviewFlow(store ReviewStore, tasks TaskProvider, calendar CalendarProvider, events EventLogger) *ReviewFlow {
	return &ReviewFlow{
		store:    store,
		tasks:    tasks,
		calendar: calendar,
		events:   events,
		now:      time.Now,
	}
}

// StartSession initializes a weekly review session of the given type.
func (f *ReviewFlow) StartSession(userID string, sessionType models.ReviewSessionType, focusAreas []string) (*models.ReviewSession, error) {
	switch sessionType {
	case models.ReviewFull, models.ReviewQuick, models.ReviewFocused:
	default:
		return nil, fmt.Errorf("unknown review session type %q", sessionType)
	}

	started := f.now()
	session := models.ReviewSession{
		ID:         fmt.Sprintf("WR-%s", started.Format("20060102-150405")),
		UserID:     userID,
		Type:       sessionType,
		FocusAreas: focusAreas,
		WeekStart:  weekStart(started),
		StartedAt:  started,
	}
	if err := f.store.SaveReview(session); err != nil {
		return nil, fmt.Errorf("starting review session: %w", err)
	}
	if f.events != nil {
		f.events.LogEvent("review.started", map[string]any{"id": session.ID, "type": string(sessionType)})
	}
	return &session, nil
}

// GetSession loads a review session by ID.
func (f *ReviewFlow) GetSession(id string) (*models.ReviewSession, error) {
	return f.store.GetReview(id)
}

// ListSessions returns a user's review sessions, newest week first.
func (f *ReviewFlow) ListSessions(userID string) ([]models.ReviewSession, error) {
	return f.store.ListReviews(userID)
}

// CompleteStep marks a step done and returns the updated session.
func (f *ReviewFlow) CompleteStep(sessionID string, step models.ReviewStep, notes string) (*models.ReviewSession, error) {
	if _, ok := reviewStepLabels[step]; !ok {
		return nil, fmt.Errorf("unknown review step %q", step)
	}

	session, err := f.store.GetReview(sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading review session: %w", err)
	}

	for _, done := range session.CompletedSteps {
		if done == step {
			return session, nil // already completed, idempotent
		}
	}
	session.CompletedSteps = append(session.CompletedSteps, step)
	if notes != "" {
		if session.Notes != "" {
			session.Notes += "\n"
		}
		session.Notes += notes
	}

	if len(session.CompletedSteps) == len(models.ReviewStepOrder) {
		completed := f.now()
		session.CompletedAt = &completed
	}

	if err := f.store.SaveReview(*session); err != nil {
		return nil, fmt.Errorf("saving review progress: %w", err)
	}
	return session, nil
}

// NextStep returns the first step of the canonical order not yet completed,
// or false when the review is finished.
func (f *ReviewFlow) NextStep(session *models.ReviewSession) (models.ReviewStep, bool) {
	done := make(map[models.ReviewStep]bool, len(session.CompletedSteps))
	for _, s := range session.CompletedSteps {
		done[s] = true
	}
	for _, s := range models.ReviewStepOrder {
		if !done[s] {
			return s, true
		}
	}
	return "", false
}

// ProgressReport renders the session's progress: completed steps, the next
// step, and accumulated notes.
func (f *ReviewFlow) ProgressReport(session *models.ReviewSession) string {
	var b strings.Builder
	b.WriteString("Weekly Review Progress\n\n")
	for _, s := range session.CompletedSteps {
		fmt.Fprintf(&b, "  [x] %s\n", reviewStepLabels[s])
	}
	if next, ok := f.NextStep(session); ok {
		fmt.Fprintf(&b, "  [ ] Next: %s\n", reviewStepLabels[next])
	} else {
		b.WriteString("\nWeekly review complete! Ready to save and wrap up.\n")
	}
	if session.Notes != "" {
		fmt.Fprintf(&b, "\nSession notes:\n%s\n", session.Notes)
	}
	return b.String()
}

// CurrentWeekContext gathers tasks and calendar events for the "get current"
// and "calendar" steps. Providers that are not connected contribute nothing.
func (f *ReviewFlow) CurrentWeekContext(ctx context.Context, session *models.ReviewSession) (string, error) {
	var b strings.Builder

	if f.tasks != nil {
		completed, err := f.tasks.CompletedSince(ctx, session.WeekStart)
		if err != nil {
			return "", fmt.Errorf("fetching completed tasks: %w", err)
		}
		open, err := f.tasks.OpenTasks(ctx)
		if err != nil {
			return "", fmt.Errorf("fetching open tasks: %w", err)
		}
		fmt.Fprintf(&b, "Completed this week (%d):\n", len(completed))
		for _, t := range completed {
			fmt.Fprintf(&b, "  - %s\n", t.Content)
		}
		fmt.Fprintf(&b, "\nStill open (%d):\n", len(open))
		for _, t := range open {
			line := "  - " + t.Content
			if t.Due != nil {
				line += " (due " + t.Due.Format("2006-01-02") + ")"
			}
			b.WriteString(line + "\n")
		}
	}

	if f.calendar != nil {
		from := f.now()
		events, err := f.calendar.UpcomingEvents(ctx, from, from.AddDate(0, 0, 7))
		if err != nil {
			return "", fmt.Errorf("fetching calendar events: %w", err)
		}
		fmt.Fprintf(&b, "\nComing up (%d events):\n", len(events))
		for _, e := range events {
			fmt.Fprintf(&b, "  - %s %s\n", e.Start.Format("Mon 02 Jan 15:04"), e.Summary)
		}
	}

	if b.Len() == 0 {
		return "No task or calendar providers connected.", nil
	}
	return b.String(), nil
}

// Summary renders a completed review as journal-entry text so it can be
// persisted into the daily file alongside regular entries.
func (f *ReviewFlow) Summary(session *models.ReviewSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly review (%s) for week of %s.\n", session.Type, session.WeekStart.Format("2006-01-02"))
	for _, s := range session.CompletedSteps {
		fmt.Fprintf(&b, "- %s\n", reviewStepLabels[s])
	}
	if session.Notes != "" {
		b.WriteString("\n" + session.Notes + "\n")
	}
	return b.String()
}

// weekStart returns the Monday 00:00 local time of t's week.
func weekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the previous Monday
	}
	day := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}
