package issue

import (
	"context"
	"time"

	"github.com/buildmind/sitetrack/internal/domain/task"
	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Filter is the repository-level predicate conjunction for issue queries.
// Zero-valued fields contribute no constraint. Scope semantics match
// task.ProjectScope: nil is unrestricted, empty matches nothing.
type Filter struct {
	ProjectID  *common.ID
	Scope      *task.ProjectScope
	Statuses   []Status
	Priorities []schedule.Priority
	AssigneeID *common.UserID

	// Search fans out into a case-insensitive OR across code, title,
	// description, assignee name, and project name.
	Search string

	DueFrom *time.Time
	DueTo   *time.Time

	// OverdueAsOf forces `due_date < asOf AND status not terminal`,
	// overriding any supplied due range.
	OverdueAsOf *time.Time

	ExcludeTerminal bool
}

// Repository is the persistence contract for issues.
type Repository interface {
	// Save persists a new issue, assigning its sequential code.
	Save(ctx context.Context, i *Issue) error
	FindByID(ctx context.Context, id common.ID) (*Issue, error)
	Update(ctx context.Context, i *Issue) error
	Delete(ctx context.Context, id common.ID) error

	List(ctx context.Context, filter Filter, page common.Pagination) ([]*Issue, int64, error)

	// FindOverdue returns all non-terminal issues whose due date has passed.
	FindOverdue(ctx context.Context, asOf time.Time) ([]*Issue, error)

	// FindDueBetween returns all non-terminal issues due in [from, to].
	FindDueBetween(ctx context.Context, from, to time.Time) ([]*Issue, error)
}
