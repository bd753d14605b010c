// Package document defines attachment metadata for project documents
// (drawings, BIM exports, photos). Binary content lives in object storage;
// the database carries only the descriptor.
package document

import (
	"context"
	"strings"
	"time"

	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Document is the metadata descriptor of a stored file.
type Document struct {
	ID          common.ID     `json:"id"`
	ProjectID   common.ID     `json:"project_id"`
	Name        string        `json:"name"`
	ContentType string        `json:"content_type"`
	SizeBytes   int64         `json:"size_bytes"`

	// StorageKey locates the object in the bucket: <project_id>/<id>/<name>.
	StorageKey string `json:"storage_key"`

	UploadedBy common.UserID `json:"uploaded_by"`
	CreatedAt  time.Time     `json:"created_at"`
}

// New creates a Document descriptor with validation.
func New(projectID common.ID, name, contentType string, size int64, uploadedBy common.UserID) (*Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.InvalidParam("document name must not be empty")
	}
	if projectID == "" {
		return nil, errors.InvalidParam("project id is required")
	}
	if size < 0 {
		return nil, errors.InvalidParam("document size must not be negative")
	}

	id := common.NewID()
	return &Document{
		ID:          id,
		ProjectID:   projectID,
		Name:        name,
		ContentType: contentType,
		SizeBytes:   size,
		StorageKey:  string(projectID) + "/" + string(id) + "/" + name,
		UploadedBy:  uploadedBy,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Repository is the persistence contract for document descriptors.
type Repository interface {
	Save(ctx context.Context, d *Document) error
	FindByID(ctx context.Context, id common.ID) (*Document, error)
	Delete(ctx context.Context, id common.ID) error
	ListForProject(ctx context.Context, projectID common.ID, page common.Pagination) ([]*Document, int64, error)
}

// ObjectStore is the contract with the blob backend (MinIO). URLs returned by
// the presign methods are handed straight to the SPA so uploads and downloads
// bypass the API server.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
}
