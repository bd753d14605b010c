package repositories

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildmind/sitetrack/internal/domain/project"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

const projectColumns = `p.id, p.code, p.name, p.description, p.status,
	p.start_date, p.end_date, p.created_by, p.created_at, p.updated_at`

// ProjectRepository is the pgx-backed project.Repository.
type ProjectRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewProjectRepository constructs a ready-to-use ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool, logger logging.Logger) *ProjectRepository {
	return &ProjectRepository{pool: pool, logger: logger.Named("project_repo")}
}

func (r *ProjectRepository) Save(ctx context.Context, p *project.Project) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO projects (
			id, code, name, description, status, start_date, end_date,
			created_by, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.Code, p.Name, p.Description, p.Status, p.StartDate, p.EndDate,
		p.CreatedBy, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.New(errors.CodeProjectCodeExists, "project code already in use").WithDetail("code=" + p.Code)
		}
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to insert project")
	}
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id common.ID) (*project.Project, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id)
	return r.scanOne(row, "id="+string(id))
}

func (r *ProjectRepository) FindByCode(ctx context.Context, code string) (*project.Project, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.code = $1`, code)
	return r.scanOne(row, "code="+code)
}

func (r *ProjectRepository) scanOne(row pgx.Row, detail string) (*project.Project, error) {
	p, err := scanProject(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.CodeProjectNotFound, "project not found").WithDetail(detail)
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query project")
	}
	return p, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE projects SET
			name = $2, description = $3, status = $4,
			start_date = $5, end_date = $6, updated_at = $7
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Status, p.StartDate, p.EndDate, p.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to update project")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.CodeProjectNotFound, "project not found").WithDetail("id=" + string(p.ID))
	}
	return nil
}

func (r *ProjectRepository) List(ctx context.Context, page common.Pagination) ([]*project.Project, int64, error) {
	page.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to count projects")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects p
		ORDER BY p.created_at DESC LIMIT $1 OFFSET $2`,
		page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to query projects")
	}
	defer rows.Close()

	projects, err := scanProjects(rows)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *ProjectRepository) ListForUser(ctx context.Context, userID common.UserID, page common.Pagination) ([]*project.Project, int64, error) {
	page.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM projects p
		JOIN project_members m ON m.project_id = p.id
		WHERE m.user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to count user projects")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects p
		JOIN project_members m ON m.project_id = p.id
		WHERE m.user_id = $1
		ORDER BY p.created_at DESC LIMIT $2 OFFSET $3`,
		userID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to query user projects")
	}
	defer rows.Close()

	projects, err := scanProjects(rows)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *ProjectRepository) AddMember(ctx context.Context, m *project.Member) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id, role, added_at)
		VALUES ($1,$2,$3,$4)`,
		m.ProjectID, m.UserID, m.Role, m.AddedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.New(errors.CodeConflict, "user is already a project member")
		}
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to add project member")
	}
	return nil
}

func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID common.ID, userID common.UserID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to remove project member")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("project member not found")
	}
	return nil
}

func (r *ProjectRepository) ListMembers(ctx context.Context, projectID common.ID) ([]*project.Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT project_id, user_id, role, added_at
		FROM project_members WHERE project_id = $1
		ORDER BY added_at ASC`, projectID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query project members")
	}
	defer rows.Close()

	var members []*project.Member
	for rows.Next() {
		var m project.Member
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.AddedAt); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan member row")
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "member row iteration failed")
	}
	return members, nil
}

func (r *ProjectRepository) MemberProjectIDs(ctx context.Context, userID common.UserID) ([]common.ID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT project_id FROM project_members WHERE user_id = $1`, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query membership")
	}
	defer rows.Close()

	var ids []common.ID
	for rows.Next() {
		var id common.ID
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan membership row")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "membership row iteration failed")
	}
	return ids, nil
}

func (r *ProjectRepository) IsMember(ctx context.Context, projectID common.ID, userID common.UserID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2
		)`, projectID, userID).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, errors.CodeDatabaseError, "failed to check membership")
	}
	return exists, nil
}

func scanProject(row pgx.Row) (*project.Project, error) {
	var p project.Project
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &p.Status,
		&p.StartDate, &p.EndDate, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProjects(rows pgx.Rows) ([]*project.Project, error) {
	var projects []*project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan project row")
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "project row iteration failed")
	}
	return projects, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == "23505"
}
