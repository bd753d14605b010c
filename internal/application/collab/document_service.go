package collab

import (
	"context"
	"time"

	"github.com/buildmind/sitetrack/internal/application/tracking"
	"github.com/buildmind/sitetrack/internal/domain/document"
	"github.com/buildmind/sitetrack/internal/infrastructure/auth"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// UploadInput describes a file the client wants to upload.
type UploadInput struct {
	ProjectID   common.ID
	Name        string
	ContentType string
	SizeBytes   int64
}

// UploadTicket pairs the stored descriptor with the presigned URL the client
// PUTs the bytes to.
type UploadTicket struct {
	Document  *document.Document `json:"document"`
	UploadURL string             `json:"upload_url"`
}

// DocumentService owns document descriptors and their presigned access URLs.
type DocumentService struct {
	documents document.Repository
	store     document.ObjectStore
	scopes    *tracking.ScopeResolver
	expiry    time.Duration
	logger    logging.Logger
}

// NewDocumentService wires the service. expiry bounds presigned URL
// lifetimes.
func NewDocumentService(documents document.Repository, store document.ObjectStore, scopes *tracking.ScopeResolver, expiry time.Duration, logger logging.Logger) *DocumentService {
	return &DocumentService{
		documents: documents,
		store:     store,
		scopes:    scopes,
		expiry:    expiry,
		logger:    logger.Named("document_service"),
	}
}

// RequestUpload registers the descriptor and returns a presigned upload URL.
func (s *DocumentService) RequestUpload(ctx context.Context, p *auth.Principal, in UploadInput) (*UploadTicket, error) {
	if err := s.scopes.Authorize(ctx, p, in.ProjectID); err != nil {
		return nil, err
	}

	doc, err := document.New(in.ProjectID, in.Name, in.ContentType, in.SizeBytes, p.ID)
	if err != nil {
		return nil, err
	}
	if err := s.documents.Save(ctx, doc); err != nil {
		return nil, err
	}

	uploadURL, err := s.store.PresignPut(ctx, doc.StorageKey, doc.ContentType, s.expiry)
	if err != nil {
		return nil, err
	}
	return &UploadTicket{Document: doc, UploadURL: uploadURL}, nil
}

// DownloadURL returns a presigned download URL for the document.
func (s *DocumentService) DownloadURL(ctx context.Context, p *auth.Principal, id common.ID) (string, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.scopes.Authorize(ctx, p, doc.ProjectID); err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, doc.StorageKey, s.expiry)
}

// List returns the project's document descriptors.
func (s *DocumentService) List(ctx context.Context, p *auth.Principal, projectID common.ID, page common.Pagination) ([]*document.Document, int64, error) {
	if err := s.scopes.Authorize(ctx, p, projectID); err != nil {
		return nil, 0, err
	}
	return s.documents.ListForProject(ctx, projectID, page)
}

// Delete removes the descriptor and the stored object. A failed object
// removal is logged; the descriptor is already gone and the object reaper
// can collect strays.
func (s *DocumentService) Delete(ctx context.Context, p *auth.Principal, id common.ID) error {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.scopes.Authorize(ctx, p, doc.ProjectID); err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, doc.StorageKey); err != nil {
		s.logger.Warn("object removal failed",
			logging.String("key", doc.StorageKey), logging.Err(err))
	}
	return nil
}
