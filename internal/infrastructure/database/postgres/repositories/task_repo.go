package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildmind/sitetrack/internal/domain/task"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

const taskColumns = `t.id, t.project_id, t.title, t.description, t.category,
	t.status, t.priority, t.assignee_id, t.due_date, t.progress,
	t.created_by, t.created_at, t.updated_at, t.completed_at`

// taskTerminalStatuses mirrors the domain's terminal subset for SQL
// predicates.
var taskTerminalStatuses = []string{string(task.StatusCompleted), string(task.StatusCancelled)}

// TaskRepository is the pgx-backed task.Repository.
type TaskRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewTaskRepository constructs a ready-to-use TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool, logger logging.Logger) *TaskRepository {
	return &TaskRepository{pool: pool, logger: logger.Named("task_repo")}
}

func (r *TaskRepository) Save(ctx context.Context, t *task.Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (
			id, project_id, title, description, category, status, priority,
			assignee_id, due_date, progress, created_by, created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		t.ID, t.ProjectID, t.Title, t.Description, t.Category, t.Status, t.Priority,
		t.AssigneeID, t.DueDate, t.Progress, t.CreatedBy, t.CreatedAt, t.UpdatedAt, t.CompletedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to insert task")
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id common.ID) (*task.Task, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks t WHERE t.id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.CodeTaskNotFound, "task not found").WithDetail("id=" + string(id))
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query task")
	}
	return t, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks SET
			title = $2, description = $3, category = $4, status = $5,
			priority = $6, assignee_id = $7, due_date = $8, progress = $9,
			updated_at = $10, completed_at = $11
		WHERE id = $1`,
		t.ID, t.Title, t.Description, t.Category, t.Status,
		t.Priority, t.AssigneeID, t.DueDate, t.Progress,
		t.UpdatedAt, t.CompletedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to update task")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.CodeTaskNotFound, "task not found").WithDetail("id=" + string(t.ID))
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to delete task")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.CodeTaskNotFound, "task not found").WithDetail("id=" + string(id))
	}
	return nil
}

// buildTaskFilter assembles the WHERE clause for List. The join aliases are
// fixed: t = tasks, p = projects, u = users (assignee).
func buildTaskFilter(f task.Filter) *condBuilder {
	b := &condBuilder{}

	if f.ProjectID != nil {
		b.add(`t.project_id = $%d`, *f.ProjectID)
	}
	if f.Scope != nil {
		// An empty scope must match nothing: a caller without memberships
		// sees an empty list, not everything.
		b.add(`t.project_id = ANY($%d)`, idsToStrings(f.Scope.IDs))
	}
	if len(f.Statuses) > 0 {
		b.add(`t.status = ANY($%d)`, statusesToStrings(f.Statuses))
	}
	if len(f.Priorities) > 0 {
		b.add(`t.priority = ANY($%d)`, prioritiesToStrings(f.Priorities))
	}
	if f.AssigneeID != nil {
		b.add(`t.assignee_id = $%d`, *f.AssigneeID)
	}
	if f.Category != "" {
		b.add(`t.category = $%d`, f.Category)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		b.add(`(t.title ILIKE $%[1]d OR t.description ILIKE $%[1]d OR t.category ILIKE $%[1]d
			OR u.name ILIKE $%[1]d OR p.name ILIKE $%[1]d)`, pattern)
	}

	if f.OverdueAsOf != nil {
		// Overdue overrides any supplied due range.
		b.add(`t.due_date < $%d`, *f.OverdueAsOf)
		b.add(`NOT (t.status = ANY($%d))`, taskTerminalStatuses)
	} else {
		if f.DueFrom != nil {
			b.add(`t.due_date >= $%d`, *f.DueFrom)
		}
		if f.DueTo != nil {
			b.add(`t.due_date <= $%d`, *f.DueTo)
		}
		if f.ExcludeTerminal {
			b.add(`NOT (t.status = ANY($%d))`, taskTerminalStatuses)
		}
	}

	return b
}

func (r *TaskRepository) List(ctx context.Context, f task.Filter, page common.Pagination) ([]*task.Task, int64, error) {
	page.Normalize()
	b := buildTaskFilter(f)

	base := ` FROM tasks t
		JOIN projects p ON p.id = t.project_id
		LEFT JOIN users u ON u.id = t.assignee_id` + b.where()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+base, b.args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to count tasks")
	}

	query := fmt.Sprintf(`SELECT %s%s ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d`,
		taskColumns, base, b.next(), b.next()+1)
	args := append(b.args, page.PageSize, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to query tasks")
	}
	defer rows.Close()

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *TaskRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]*task.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks t
		WHERE t.due_date < $1 AND NOT (t.status = ANY($2))
		ORDER BY t.due_date ASC`,
		asOf, taskTerminalStatuses)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query overdue tasks")
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *TaskRepository) FindDueBetween(ctx context.Context, from, to time.Time) ([]*task.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks t
		WHERE t.due_date >= $1 AND t.due_date <= $2 AND NOT (t.status = ANY($3))
		ORDER BY t.due_date ASC`,
		from, to, taskTerminalStatuses)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query upcoming tasks")
	}
	defer rows.Close()
	return scanTasks(rows)
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var t task.Task
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Category,
		&t.Status, &t.Priority, &t.AssigneeID, &t.DueDate, &t.Progress,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTasks(rows pgx.Rows) ([]*task.Task, error) {
	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan task row")
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "task row iteration failed")
	}
	return tasks, nil
}
