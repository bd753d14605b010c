package task

import (
	"context"
	"time"

	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// ProjectScope restricts a query to a caller's project memberships. A nil
// *ProjectScope means unrestricted (admin); a non-nil scope with no IDs
// matches nothing, so a caller with no memberships gets an empty list rather
// than an error.
type ProjectScope struct {
	IDs []common.ID
}

// Filter is the repository-level predicate conjunction for task queries.
// Zero-valued fields contribute no constraint.
type Filter struct {
	ProjectID  *common.ID
	Scope      *ProjectScope
	Statuses   []Status
	Priorities []schedule.Priority
	AssigneeID *common.UserID
	Category   string

	// Search fans out into a case-insensitive OR across title, description,
	// category, assignee name, and project name.
	Search string

	// DueFrom/DueTo bound the due date. Ignored when OverdueAsOf is set.
	DueFrom *time.Time
	DueTo   *time.Time

	// OverdueAsOf forces `due_date < asOf AND status not terminal`,
	// overriding any supplied due range.
	OverdueAsOf *time.Time

	// ExcludeTerminal drops completed and cancelled tasks.
	ExcludeTerminal bool
}

// Repository is the persistence contract for tasks.
type Repository interface {
	Save(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id common.ID) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id common.ID) error

	// List returns the page of tasks matching filter plus the total count.
	List(ctx context.Context, filter Filter, page common.Pagination) ([]*Task, int64, error)

	// FindOverdue returns all non-terminal tasks whose due date has passed.
	FindOverdue(ctx context.Context, asOf time.Time) ([]*Task, error)

	// FindDueBetween returns all non-terminal tasks due in [from, to].
	FindDueBetween(ctx context.Context, from, to time.Time) ([]*Task, error)
}
