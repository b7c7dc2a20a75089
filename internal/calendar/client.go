// Package calendar wraps Google Calendar event CRUD for the authenticated
// user's primary calendar, authenticating with the OAuth tokens stored on
// the user record.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/polymathuniversata/toDoApp/internal/models"
)

const (
	primaryCalendarID = "primary"
	defaultMaxResults = 10
	defaultRange      = 30 * 24 * time.Hour
)

// ProviderError wraps any upstream Calendar API failure: expired or
// revoked tokens, quota errors, and not-found all surface through it. The
// adapter never retries.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("calendar provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError reports whether err originated from the calendar
// provider.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// Client wraps the Google Calendar service for a single user.
type Client struct {
	svc *gcal.Service
}

// NewClient builds a Calendar client from the user's stored access and
// refresh tokens. The oauth2 token source redeems the refresh token
// silently when the access token has expired; no expiry is persisted, so
// a stored refresh token forces a validity check on first use.
func NewClient(ctx context.Context, conf *oauth2.Config, user *models.User) (*Client, error) {
	if !user.HasGoogleLink() {
		return nil, fmt.Errorf("user is not linked to a Google account")
	}

	token := &oauth2.Token{
		AccessToken:  user.GoogleAccessToken,
		TokenType:    "Bearer",
		RefreshToken: user.GoogleRefreshToken,
	}
	if token.RefreshToken != "" {
		token.Expiry = time.Unix(1, 0)
	}

	ts := conf.TokenSource(ctx, token)

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// ListEvents returns upcoming events ordered by start time, with
// recurring events expanded into individual instances. The range defaults
// to now through the next 30 days.
func (c *Client) ListEvents(ctx context.Context, start, end *time.Time, maxResults int64) ([]Event, error) {
	timeMin, timeMax := eventWindow(time.Now(), start, end)
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	result, err := c.svc.Events.List(primaryCalendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, &ProviderError{Op: "list events", Err: err}
	}

	events := make([]Event, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, toEvent(item))
	}
	return events, nil
}

// eventWindow resolves the listing range. Each bound defaults
// independently: the lower bound to now, the upper to 30 days from now.
func eventWindow(now time.Time, start, end *time.Time) (time.Time, time.Time) {
	timeMin := now
	if start != nil {
		timeMin = *start
	}
	timeMax := now.Add(defaultRange)
	if end != nil {
		timeMax = *end
	}
	return timeMin, timeMax
}

func (c *Client) CreateEvent(ctx context.Context, in EventInput) (*Event, error) {
	created, err := c.svc.Events.Insert(primaryCalendarID, in.toGoogleEvent(time.Now())).
		Context(ctx).
		Do()
	if err != nil {
		return nil, &ProviderError{Op: "create event", Err: err}
	}

	event := toEvent(created)
	return &event, nil
}

// UpdateEvent overwrites the event's summary, description, start and end.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, in EventInput) (*Event, error) {
	updated, err := c.svc.Events.Update(primaryCalendarID, eventID, in.toGoogleEvent(time.Now())).
		Context(ctx).
		Do()
	if err != nil {
		return nil, &ProviderError{Op: "update event", Err: err}
	}

	event := toEvent(updated)
	return &event, nil
}

func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if err := c.svc.Events.Delete(primaryCalendarID, eventID).Context(ctx).Do(); err != nil {
		return &ProviderError{Op: "delete event", Err: err}
	}
	return nil
}
