package collab

import (
	"context"
	"time"

	"github.com/buildmind/sitetrack/internal/application/tracking"
	"github.com/buildmind/sitetrack/internal/domain/calendar"
	"github.com/buildmind/sitetrack/internal/infrastructure/auth"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// CreateEventInput carries the creation payload.
type CreateEventInput struct {
	ProjectID       common.ID
	Title           string
	Description     string
	Location        string
	StartsAt        time.Time
	EndsAt          time.Time
	ReminderMinutes int
	Attendees       []common.UserID
}

// UpdateEventInput carries a partial update; nil fields are untouched.
type UpdateEventInput struct {
	Title           *string
	Description     *string
	Location        *string
	StartsAt        *time.Time
	EndsAt          *time.Time
	ReminderMinutes *int
	Attendees       []common.UserID
}

// CalendarService owns calendar events.
type CalendarService struct {
	events calendar.Repository
	scopes *tracking.ScopeResolver
	logger logging.Logger
	now    func() time.Time
}

// NewCalendarService wires the service.
func NewCalendarService(events calendar.Repository, scopes *tracking.ScopeResolver, logger logging.Logger) *CalendarService {
	return &CalendarService{
		events: events,
		scopes: scopes,
		logger: logger.Named("calendar_service"),
		now:    time.Now,
	}
}

// Create validates and persists a new event.
func (s *CalendarService) Create(ctx context.Context, p *auth.Principal, in CreateEventInput) (*calendar.Event, error) {
	if err := s.scopes.Authorize(ctx, p, in.ProjectID); err != nil {
		return nil, err
	}

	ev, err := calendar.New(in.ProjectID, in.Title, in.StartsAt, in.EndsAt, p.ID)
	if err != nil {
		return nil, err
	}
	ev.Description = in.Description
	ev.Location = in.Location
	ev.ReminderMinutes = in.ReminderMinutes
	ev.Attendees = in.Attendees

	if err := s.events.Save(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Get loads one event, enforcing project access.
func (s *CalendarService) Get(ctx context.Context, p *auth.Principal, id common.ID) (*calendar.Event, error) {
	ev, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.scopes.Authorize(ctx, p, ev.ProjectID); err != nil {
		return nil, err
	}
	return ev, nil
}

// List returns the project's events inside the optional date range.
func (s *CalendarService) List(ctx context.Context, p *auth.Principal, projectID common.ID, rng common.DateRange, page common.Pagination) ([]*calendar.Event, int64, error) {
	if err := s.scopes.Authorize(ctx, p, projectID); err != nil {
		return nil, 0, err
	}
	return s.events.ListForProject(ctx, projectID, rng, page)
}

// Update applies a partial update. Moving the event re-arms its reminder.
func (s *CalendarService) Update(ctx context.Context, p *auth.Principal, id common.ID, in UpdateEventInput) (*calendar.Event, error) {
	ev, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.scopes.Authorize(ctx, p, ev.ProjectID); err != nil {
		return nil, err
	}

	if in.Title != nil {
		ev.Title = *in.Title
	}
	if in.Description != nil {
		ev.Description = *in.Description
	}
	if in.Location != nil {
		ev.Location = *in.Location
	}
	if in.StartsAt != nil {
		if !ev.StartsAt.Equal(*in.StartsAt) {
			ev.ReminderSentAt = nil
		}
		ev.StartsAt = *in.StartsAt
	}
	if in.EndsAt != nil {
		ev.EndsAt = *in.EndsAt
	}
	if in.ReminderMinutes != nil {
		ev.ReminderMinutes = *in.ReminderMinutes
	}
	if in.Attendees != nil {
		ev.Attendees = in.Attendees
	}
	if ev.EndsAt.Before(ev.StartsAt) {
		return nil, errors.New(errors.CodeEventInvalidTime, "event must not end before it starts")
	}
	ev.UpdatedAt = s.now().UTC()

	if err := s.events.Update(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Delete removes the event.
func (s *CalendarService) Delete(ctx context.Context, p *auth.Principal, id common.ID) error {
	ev, err := s.events.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.scopes.Authorize(ctx, p, ev.ProjectID); err != nil {
		return err
	}
	return s.events.Delete(ctx, id)
}
