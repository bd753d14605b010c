// Package calendar defines calendar events and their reminder logic. The
// reminder sweep runs every minute and asks each event whether its reminder
// offset has come due.
package calendar

import (
	"context"
	"strings"
	"time"

	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Event is a scheduled occurrence (site meeting, inspection, delivery)
// attached to a project.
type Event struct {
	ID          common.ID       `json:"id"`
	ProjectID   common.ID       `json:"project_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	StartsAt    time.Time       `json:"starts_at"`
	EndsAt      time.Time       `json:"ends_at"`

	// ReminderMinutes is how long before StartsAt the reminder fires; zero
	// disables the reminder.
	ReminderMinutes int `json:"reminder_minutes"`

	// ReminderSentAt is stamped by the reminder sweep so an event is
	// reminded exactly once.
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`

	Attendees []common.UserID `json:"attendees"`
	CreatedBy common.UserID   `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New creates an Event with validation.
func New(projectID common.ID, title string, startsAt, endsAt time.Time, createdBy common.UserID) (*Event, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.InvalidParam("event title must not be empty")
	}
	if startsAt.IsZero() {
		return nil, errors.New(errors.CodeEventInvalidTime, "event start time is required")
	}
	if !endsAt.IsZero() && endsAt.Before(startsAt) {
		return nil, errors.New(errors.CodeEventInvalidTime, "event must not end before it starts")
	}

	now := time.Now().UTC()
	return &Event{
		ID:        common.NewID(),
		ProjectID: projectID,
		Title:     strings.TrimSpace(title),
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ReminderDue reports whether the event's reminder should fire at now: the
// reminder window has opened, the event has not started yet, and no reminder
// has been sent.
func (e *Event) ReminderDue(now time.Time) bool {
	if e.ReminderMinutes <= 0 || e.ReminderSentAt != nil {
		return false
	}
	if !now.Before(e.StartsAt) {
		return false
	}
	reminderAt := e.StartsAt.Add(-time.Duration(e.ReminderMinutes) * time.Minute)
	return !now.Before(reminderAt)
}

// MarkReminded stamps the reminder sent time.
func (e *Event) MarkReminded(now time.Time) {
	e.ReminderSentAt = &now
}

// Repository is the persistence contract for calendar events.
type Repository interface {
	Save(ctx context.Context, e *Event) error
	FindByID(ctx context.Context, id common.ID) (*Event, error)
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id common.ID) error
	ListForProject(ctx context.Context, projectID common.ID, rng common.DateRange, page common.Pagination) ([]*Event, int64, error)

	// FindPendingReminders returns events whose reminder window is open at
	// asOf and which have not been reminded yet.
	FindPendingReminders(ctx context.Context, asOf time.Time) ([]*Event, error)

	// MarkReminded persists the reminder stamp for the event.
	MarkReminded(ctx context.Context, id common.ID, at time.Time) error
}
