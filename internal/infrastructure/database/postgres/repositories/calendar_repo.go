package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildmind/sitetrack/internal/domain/calendar"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

const eventColumns = `e.id, e.project_id, e.title, e.description, e.location,
	e.starts_at, e.ends_at, e.reminder_minutes, e.reminder_sent_at,
	e.attendees, e.created_by, e.created_at, e.updated_at`

// CalendarRepository is the pgx-backed calendar.Repository. Attendees are
// stored as a text[] column.
type CalendarRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewCalendarRepository constructs a ready-to-use CalendarRepository.
func NewCalendarRepository(pool *pgxpool.Pool, logger logging.Logger) *CalendarRepository {
	return &CalendarRepository{pool: pool, logger: logger.Named("calendar_repo")}
}

func (r *CalendarRepository) Save(ctx context.Context, e *calendar.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO calendar_events (
			id, project_id, title, description, location, starts_at, ends_at,
			reminder_minutes, reminder_sent_at, attendees, created_by, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		e.ID, e.ProjectID, e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt,
		e.ReminderMinutes, e.ReminderSentAt, userIDsToStrings(e.Attendees), e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to insert event")
	}
	return nil
}

func (r *CalendarRepository) FindByID(ctx context.Context, id common.ID) (*calendar.Event, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM calendar_events e WHERE e.id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.CodeEventNotFound, "event not found").WithDetail("id=" + string(id))
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query event")
	}
	return e, nil
}

func (r *CalendarRepository) Update(ctx context.Context, e *calendar.Event) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE calendar_events SET
			title = $2, description = $3, location = $4, starts_at = $5,
			ends_at = $6, reminder_minutes = $7, reminder_sent_at = $8,
			attendees = $9, updated_at = $10
		WHERE id = $1`,
		e.ID, e.Title, e.Description, e.Location, e.StartsAt,
		e.EndsAt, e.ReminderMinutes, e.ReminderSentAt,
		userIDsToStrings(e.Attendees), e.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to update event")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.CodeEventNotFound, "event not found").WithDetail("id=" + string(e.ID))
	}
	return nil
}

func (r *CalendarRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to delete event")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.CodeEventNotFound, "event not found").WithDetail("id=" + string(id))
	}
	return nil
}

func (r *CalendarRepository) ListForProject(ctx context.Context, projectID common.ID, rng common.DateRange, page common.Pagination) ([]*calendar.Event, int64, error) {
	page.Normalize()

	b := &condBuilder{}
	b.add(`e.project_id = $%d`, projectID)
	if !rng.From.IsZero() {
		b.add(`e.ends_at >= $%d`, rng.From)
	}
	if !rng.To.IsZero() {
		b.add(`e.starts_at < $%d`, rng.To)
	}

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM calendar_events e`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to count events")
	}

	query := fmt.Sprintf(`SELECT %s FROM calendar_events e%s ORDER BY e.starts_at ASC LIMIT $%d OFFSET $%d`,
		eventColumns, b.where(), b.next(), b.next()+1)
	args := append(b.args, page.PageSize, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to query events")
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// FindPendingReminders selects events whose reminder window is open at asOf,
// which have not started and have not been reminded. The window predicate
// mirrors Event.ReminderDue.
func (r *CalendarRepository) FindPendingReminders(ctx context.Context, asOf time.Time) ([]*calendar.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+` FROM calendar_events e
		WHERE e.reminder_minutes > 0
		  AND e.reminder_sent_at IS NULL
		  AND e.starts_at > $1
		  AND e.starts_at - make_interval(mins => e.reminder_minutes) <= $1
		ORDER BY e.starts_at ASC`, asOf)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query pending reminders")
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *CalendarRepository) MarkReminded(ctx context.Context, id common.ID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE calendar_events SET reminder_sent_at = $2
		WHERE id = $1 AND reminder_sent_at IS NULL`, id, at)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to mark event reminded")
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debug("reminder stamp skipped", logging.String("event_id", string(id)))
	}
	return nil
}

func scanEvent(row pgx.Row) (*calendar.Event, error) {
	var (
		e         calendar.Event
		attendees []string
	)
	err := row.Scan(
		&e.ID, &e.ProjectID, &e.Title, &e.Description, &e.Location,
		&e.StartsAt, &e.EndsAt, &e.ReminderMinutes, &e.ReminderSentAt,
		&attendees, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Attendees = make([]common.UserID, len(attendees))
	for i, a := range attendees {
		e.Attendees[i] = common.UserID(a)
	}
	return &e, nil
}

func scanEvents(rows pgx.Rows) ([]*calendar.Event, error) {
	var events []*calendar.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan event row")
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "event row iteration failed")
	}
	return events, nil
}

func userIDsToStrings(ids []common.UserID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
