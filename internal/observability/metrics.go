package observability

import (
	"fmt"
	"time"
)

// Metrics holds journaling activity derived from the event log.
type Metrics struct {
	EntriesSaved       int        `json:"entries_saved"`
	SavesFailed        int        `json:"saves_failed"`
	SummariesGenerated int        `json:"summaries_generated"`
	SummariesSkipped   int        `json:"summaries_skipped"`
	SessionsStarted    int        `json:"sessions_started"`
	ReviewsStarted     int        `json:"reviews_started"`
	ReviewsCompleted   int        `json:"reviews_completed"`
	EventCount         int        `json:"event_count"`
	OldestEvent        *time.Time `json:"oldest_event,omitempty"`
	NewestEvent        *time.Time `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "entry.saved":
			m.EntriesSaved++
		case "entry.save_failed":
			m.SavesFailed++
		case "summary.generated":
			m.SummariesGenerated++
		case "summary.skipped":
			m.SummariesSkipped++
		case "session.started":
			m.SessionsStarted++
		case "review.started":
			m.ReviewsStarted++
		case "review.completed":
			m.ReviewsCompleted++
		}
	}

	return m, nil
}
