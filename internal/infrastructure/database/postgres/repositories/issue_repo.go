package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildmind/sitetrack/internal/domain/issue"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

const issueColumns = `i.id, i.project_id, i.code, i.title, i.description,
	i.status, i.priority, i.assignee_id, i.due_date, i.resolution,
	i.reported_by, i.created_at, i.updated_at, i.resolved_at`

var issueTerminalStatuses = []string{string(issue.StatusResolved), string(issue.StatusClosed)}

// IssueRepository is the pgx-backed issue.Repository.
type IssueRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewIssueRepository constructs a ready-to-use IssueRepository.
func NewIssueRepository(pool *pgxpool.Pool, logger logging.Logger) *IssueRepository {
	return &IssueRepository{pool: pool, logger: logger.Named("issue_repo")}
}

// Save persists a new issue. The sequential code is assigned by the database
// from issue_code_seq and written back onto the entity.
func (r *IssueRepository) Save(ctx context.Context, i *issue.Issue) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO issues (
			id, project_id, code, title, description, status, priority,
			assignee_id, due_date, resolution, reported_by, created_at, updated_at, resolved_at
		) VALUES (
			$1, $2, 'ISS-' || lpad(nextval('issue_code_seq')::text, 4, '0'),
			$3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		) RETURNING code`,
		i.ID, i.ProjectID, i.Title, i.Description, i.Status, i.Priority,
		i.AssigneeID, i.DueDate, i.Resolution, i.ReportedBy, i.CreatedAt, i.UpdatedAt, i.ResolvedAt,
	).Scan(&i.Code)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to insert issue")
	}
	return nil
}

func (r *IssueRepository) FindByID(ctx context.Context, id common.ID) (*issue.Issue, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+issueColumns+` FROM issues i WHERE i.id = $1`, id)
	out, err := scanIssue(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.CodeIssueNotFound, "issue not found").WithDetail("id=" + string(id))
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query issue")
	}
	return out, nil
}

func (r *IssueRepository) Update(ctx context.Context, i *issue.Issue) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE issues SET
			title = $2, description = $3, status = $4, priority = $5,
			assignee_id = $6, due_date = $7, resolution = $8,
			updated_at = $9, resolved_at = $10
		WHERE id = $1`,
		i.ID, i.Title, i.Description, i.Status, i.Priority,
		i.AssigneeID, i.DueDate, i.Resolution,
		i.UpdatedAt, i.ResolvedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to update issue")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.CodeIssueNotFound, "issue not found").WithDetail("id=" + string(i.ID))
	}
	return nil
}

func (r *IssueRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to delete issue")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.CodeIssueNotFound, "issue not found").WithDetail("id=" + string(id))
	}
	return nil
}

func buildIssueFilter(f issue.Filter) *condBuilder {
	b := &condBuilder{}

	if f.ProjectID != nil {
		b.add(`i.project_id = $%d`, *f.ProjectID)
	}
	if f.Scope != nil {
		b.add(`i.project_id = ANY($%d)`, idsToStrings(f.Scope.IDs))
	}
	if len(f.Statuses) > 0 {
		b.add(`i.status = ANY($%d)`, statusesToStrings(f.Statuses))
	}
	if len(f.Priorities) > 0 {
		b.add(`i.priority = ANY($%d)`, prioritiesToStrings(f.Priorities))
	}
	if f.AssigneeID != nil {
		b.add(`i.assignee_id = $%d`, *f.AssigneeID)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		b.add(`(i.code ILIKE $%[1]d OR i.title ILIKE $%[1]d OR i.description ILIKE $%[1]d
			OR u.name ILIKE $%[1]d OR p.name ILIKE $%[1]d)`, pattern)
	}

	if f.OverdueAsOf != nil {
		b.add(`i.due_date < $%d`, *f.OverdueAsOf)
		b.add(`NOT (i.status = ANY($%d))`, issueTerminalStatuses)
	} else {
		if f.DueFrom != nil {
			b.add(`i.due_date >= $%d`, *f.DueFrom)
		}
		if f.DueTo != nil {
			b.add(`i.due_date <= $%d`, *f.DueTo)
		}
		if f.ExcludeTerminal {
			b.add(`NOT (i.status = ANY($%d))`, issueTerminalStatuses)
		}
	}

	return b
}

func (r *IssueRepository) List(ctx context.Context, f issue.Filter, page common.Pagination) ([]*issue.Issue, int64, error) {
	page.Normalize()
	b := buildIssueFilter(f)

	base := ` FROM issues i
		JOIN projects p ON p.id = i.project_id
		LEFT JOIN users u ON u.id = i.assignee_id` + b.where()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+base, b.args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to count issues")
	}

	query := fmt.Sprintf(`SELECT %s%s ORDER BY i.created_at DESC LIMIT $%d OFFSET $%d`,
		issueColumns, base, b.next(), b.next()+1)
	args := append(b.args, page.PageSize, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to query issues")
	}
	defer rows.Close()

	issues, err := scanIssues(rows)
	if err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func (r *IssueRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]*issue.Issue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+issueColumns+` FROM issues i
		WHERE i.due_date < $1 AND NOT (i.status = ANY($2))
		ORDER BY i.due_date ASC`,
		asOf, issueTerminalStatuses)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query overdue issues")
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *IssueRepository) FindDueBetween(ctx context.Context, from, to time.Time) ([]*issue.Issue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+issueColumns+` FROM issues i
		WHERE i.due_date >= $1 AND i.due_date <= $2 AND NOT (i.status = ANY($3))
		ORDER BY i.due_date ASC`,
		from, to, issueTerminalStatuses)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query issues due in range")
	}
	defer rows.Close()
	return scanIssues(rows)
}

func scanIssue(row pgx.Row) (*issue.Issue, error) {
	var i issue.Issue
	err := row.Scan(
		&i.ID, &i.ProjectID, &i.Code, &i.Title, &i.Description,
		&i.Status, &i.Priority, &i.AssigneeID, &i.DueDate, &i.Resolution,
		&i.ReportedBy, &i.CreatedAt, &i.UpdatedAt, &i.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func scanIssues(rows pgx.Rows) ([]*issue.Issue, error) {
	var issues []*issue.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan issue row")
		}
		issues = append(issues, i)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "issue row iteration failed")
	}
	return issues, nil
}
