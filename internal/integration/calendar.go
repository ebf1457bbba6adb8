package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ebetancourt/luna/pkg/models"
)

const calendarBaseURL = "https://www.googleapis.com/calendar/v3"

// GoogleCalendarClient fetches events from the Google Calendar API for the
// calendar review step.
type GoogleCalendarClient struct {
	httpClient *http.Client
	baseURL    string
	calendarID string
}

// NewGoogleCalendarClient creates a calendar client over an authenticated
// HTTP client (see HTTPClient). It reads the user's primary calendar.
func NewGoogleCalendarClient(httpClient *http.Client) *GoogleCalendarClient {
	return &GoogleCalendarClient{
		httpClient: httpClient,
		baseURL:    calendarBaseURL,
		calendarID: "primary",
	}
}

// gcalEvent is the Calendar API event shape, times reduced to what Luna uses.
type gcalEvent struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Status  string `json:"status"`
	Start   struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"end"`
}

type gcalEventsResponse struct {
	Items         []gcalEvent `json:"items"`
	NextPageToken string      `json:"nextPageToken"`
}

// UpcomingEvents returns events in [from, to), expanded from recurring
// events and ordered by start time. Cancelled events are dropped.
func (c *GoogleCalendarClient) UpcomingEvents(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	query := url.Values{
		"timeMin":      {from.UTC().Format(time.RFC3339)},
		"timeMax":      {to.UTC().Format(time.RFC3339)},
		"singleEvents": {"true"},
		"orderBy":      {"startTime"},
		"maxResults":   {"100"},
	}

	var all []models.CalendarEvent
	pageToken := ""
	for {
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}
		endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", c.baseURL, url.PathEscape(c.calendarID), query.Encode())

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("calendar request failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("calendar API error %d: %s", resp.StatusCode, string(body))
		}

		var page gcalEventsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding calendar response: %w", err)
		}

		for _, e := range page.Items {
			if e.Status == "cancelled" {
				continue
			}
			event := models.CalendarEvent{ID: e.ID, Summary: e.Summary}
			event.Start = parseEventTime(e.Start.DateTime, e.Start.Date)
			event.End = parseEventTime(e.End.DateTime, e.End.Date)
			all = append(all, event)
		}

		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}

// parseEventTime handles both timed events (dateTime) and all-day events (date).
func parseEventTime(dateTime, date string) time.Time {
	if dateTime != "" {
		if t, err := time.Parse(time.RFC3339, dateTime); err == nil {
			return t
		}
	}
	if date != "" {
		if t, err := time.Parse("2006-01-02", date); err == nil {
			return t
		}
	}
	return time.Time{}
}
