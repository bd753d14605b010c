package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildmind/sitetrack/internal/domain/document"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

const documentColumns = `d.id, d.project_id, d.name, d.content_type,
	d.size_bytes, d.storage_key, d.uploaded_by, d.created_at`

// DocumentRepository is the pgx-backed document.Repository. It stores only
// the descriptor; the bytes live in the object store.
type DocumentRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewDocumentRepository constructs a ready-to-use DocumentRepository.
func NewDocumentRepository(pool *pgxpool.Pool, logger logging.Logger) *DocumentRepository {
	return &DocumentRepository{pool: pool, logger: logger.Named("document_repo")}
}

func (r *DocumentRepository) Save(ctx context.Context, d *document.Document) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents (
			id, project_id, name, content_type, size_bytes,
			storage_key, uploaded_by, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.ProjectID, d.Name, d.ContentType, d.SizeBytes,
		d.StorageKey, d.UploadedBy, d.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to insert document")
	}
	return nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id common.ID) (*document.Document, error) {
	var d document.Document
	err := r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents d WHERE d.id = $1`, id).Scan(
		&d.ID, &d.ProjectID, &d.Name, &d.ContentType,
		&d.SizeBytes, &d.StorageKey, &d.UploadedBy, &d.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.CodeDocumentNotFound, "document not found").WithDetail("id=" + string(id))
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query document")
	}
	return &d, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to delete document")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.CodeDocumentNotFound, "document not found").WithDetail("id=" + string(id))
	}
	return nil
}

func (r *DocumentRepository) ListForProject(ctx context.Context, projectID common.ID, page common.Pagination) ([]*document.Document, int64, error) {
	page.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM documents WHERE project_id = $1`, projectID).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to count documents")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+` FROM documents d
		WHERE d.project_id = $1
		ORDER BY d.created_at DESC LIMIT $2 OFFSET $3`,
		projectID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to query documents")
	}
	defer rows.Close()

	var docs []*document.Document
	for rows.Next() {
		var d document.Document
		if err := rows.Scan(
			&d.ID, &d.ProjectID, &d.Name, &d.ContentType,
			&d.SizeBytes, &d.StorageKey, &d.UploadedBy, &d.CreatedAt,
		); err != nil {
			return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan document row")
		}
		docs = append(docs, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "document row iteration failed")
	}
	return docs, total, nil
}
