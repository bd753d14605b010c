package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildmind/sitetrack/internal/domain/permission"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// PermissionRepository stores one matrix row per project with the grid as
// JSONB. Put replaces the row wholesale.
type PermissionRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPermissionRepository constructs a ready-to-use PermissionRepository.
func NewPermissionRepository(pool *pgxpool.Pool, logger logging.Logger) *PermissionRepository {
	return &PermissionRepository{pool: pool, logger: logger.Named("permission_repo")}
}

func (r *PermissionRepository) Get(ctx context.Context, projectID common.ID) (*permission.Matrix, error) {
	m := permission.NewMatrix(projectID)
	err := r.pool.QueryRow(ctx,
		`SELECT grid FROM permission_matrices WHERE project_id = $1`, projectID).Scan(&m.Grid)
	if err != nil {
		if err == pgx.ErrNoRows {
			return m, nil
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query permission matrix")
	}
	return m, nil
}

func (r *PermissionRepository) Put(ctx context.Context, m *permission.Matrix) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO permission_matrices (project_id, grid, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (project_id) DO UPDATE
		SET grid = EXCLUDED.grid, updated_at = now()`,
		m.ProjectID, m.Grid)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to store permission matrix")
	}
	return nil
}
