package models

import "time"

// ReviewStep is one of the six GTD weekly review steps.
type ReviewStep string

const (
	StepClear    ReviewStep = "clear"    // mind sweep and collection
	StepCurrent  ReviewStep = "current"  // review the past week
	StepCreative ReviewStep = "creative" // areas of responsibility
	StepProjects ReviewStep = "projects" // projects list
	StepActions  ReviewStep = "actions"  // next actions lists
	StepCalendar ReviewStep = "calendar" // calendar and planning ahead
)

// ReviewStepOrder is the canonical ordering of the weekly review steps.
var ReviewStepOrder = []ReviewStep{
	StepClear,
	StepCurrent,
	StepCreative,
	StepProjects,
	StepActions,
	StepCalendar,
}

// ReviewSessionType selects the depth of a weekly review.
type ReviewSessionType string

const (
	ReviewFull    ReviewSessionType = "full"
	ReviewQuick   ReviewSessionType = "quick"
	ReviewFocused ReviewSessionType = "focused"
)

// ReviewSession is one weekly review, persisted in the review store.
type ReviewSession struct {
	ID             string
	UserID         string
	Type           ReviewSessionType
	FocusAreas     []string
	WeekStart      time.Time
	StartedAt      time.Time
	CompletedAt    *time.Time
	CompletedSteps []ReviewStep
	Notes          string
}

// Task is an open or completed item fetched from a task provider for the
// "get current" review step.
type Task struct {
	ID          string
	Content     string
	Project     string
	Due         *time.Time
	CompletedAt *time.Time
}

// CalendarEvent is an upcoming event fetched for the calendar review step.
type CalendarEvent struct {
	ID      string
	Summary string
	Start   time.Time
	End     time.Time
}
