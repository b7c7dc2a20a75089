package calendar

import (
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

// Event is the uniform projection of a Google Calendar event returned to
// API clients.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Status      string     `json:"status,omitempty"`
	HTMLLink    string     `json:"htmlLink,omitempty"`
}

// EventInput is the input for creating or updating an event. Start
// defaults to now and End to Start plus one hour, both in UTC.
type EventInput struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	StartDateTime *time.Time `json:"startDateTime"`
	EndDateTime   *time.Time `json:"endDateTime"`
}

func (in EventInput) toGoogleEvent(now time.Time) *gcal.Event {
	start := now.UTC()
	if in.StartDateTime != nil {
		start = in.StartDateTime.UTC()
	}
	end := start.Add(time.Hour)
	if in.EndDateTime != nil {
		end = in.EndDateTime.UTC()
	}

	return &gcal.Event{
		Summary:     in.Title,
		Description: in.Description,
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}
}

func toEvent(e *gcal.Event) Event {
	if e == nil {
		return Event{}
	}

	result := Event{
		ID:          e.Id,
		Title:       e.Summary,
		Description: e.Description,
		Status:      e.Status,
		HTMLLink:    e.HtmlLink,
	}

	if t, ok := parseEventTime(e.Start); ok {
		result.Start = &t
	}
	if t, ok := parseEventTime(e.End); ok {
		result.End = &t
	}

	return result
}

// parseEventTime handles both timed events (DateTime) and all-day events
// (Date).
func parseEventTime(edt *gcal.EventDateTime) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t, true
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
