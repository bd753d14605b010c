// Package collab is the application layer for the collaboration surface:
// projects and their rosters, permission matrices, calendar events, and
// document descriptors.
package collab

import (
	"context"
	"time"

	"github.com/buildmind/sitetrack/internal/application/tracking"
	"github.com/buildmind/sitetrack/internal/domain/permission"
	"github.com/buildmind/sitetrack/internal/domain/project"
	"github.com/buildmind/sitetrack/internal/infrastructure/auth"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// CreateProjectInput carries the creation payload.
type CreateProjectInput struct {
	Code        string
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

// UpdateProjectInput carries a partial update; nil fields are untouched.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// ProjectService owns project lifecycle, rosters, and permission matrices.
type ProjectService struct {
	projects    project.Repository
	permissions permission.Repository
	scopes      *tracking.ScopeResolver
	logger      logging.Logger
	now         func() time.Time
}

// NewProjectService wires the service.
func NewProjectService(projects project.Repository, permissions permission.Repository, scopes *tracking.ScopeResolver, logger logging.Logger) *ProjectService {
	return &ProjectService{
		projects:    projects,
		permissions: permissions,
		scopes:      scopes,
		logger:      logger.Named("project_service"),
		now:         time.Now,
	}
}

// Create persists a new project. The creator is enrolled as its owner.
func (s *ProjectService) Create(ctx context.Context, p *auth.Principal, in CreateProjectInput) (*project.Project, error) {
	proj, err := project.New(in.Code, in.Name, p.ID)
	if err != nil {
		return nil, err
	}
	proj.Description = in.Description
	proj.StartDate = in.StartDate
	proj.EndDate = in.EndDate

	if err := s.projects.Save(ctx, proj); err != nil {
		return nil, err
	}

	owner := &project.Member{
		ProjectID: proj.ID,
		UserID:    p.ID,
		Role:      project.RoleOwner,
		AddedAt:   s.now().UTC(),
	}
	if err := s.projects.AddMember(ctx, owner); err != nil {
		return nil, err
	}
	s.scopes.Invalidate(ctx, p.ID)
	return proj, nil
}

// Get loads a project the principal can see.
func (s *ProjectService) Get(ctx context.Context, p *auth.Principal, id common.ID) (*project.Project, error) {
	if err := s.scopes.Authorize(ctx, p, id); err != nil {
		return nil, err
	}
	return s.projects.FindByID(ctx, id)
}

// List returns the principal's projects; admins see all of them.
func (s *ProjectService) List(ctx context.Context, p *auth.Principal, page common.Pagination) ([]*project.Project, int64, error) {
	if p.IsAdmin() {
		return s.projects.List(ctx, page)
	}
	return s.projects.ListForUser(ctx, p.ID, page)
}

// Update applies a partial update.
func (s *ProjectService) Update(ctx context.Context, p *auth.Principal, id common.ID, in UpdateProjectInput) (*project.Project, error) {
	if err := s.scopes.Authorize(ctx, p, id); err != nil {
		return nil, err
	}
	proj, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		proj.Name = *in.Name
	}
	if in.Description != nil {
		proj.Description = *in.Description
	}
	if in.Status != nil {
		status, ok := project.ParseStatus(*in.Status)
		if !ok {
			return nil, errors.InvalidParam("unknown project status").WithDetail(*in.Status)
		}
		proj.Status = status
	}
	if in.StartDate != nil {
		proj.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		proj.EndDate = in.EndDate
	}
	proj.UpdatedAt = s.now().UTC()

	if err := s.projects.Update(ctx, proj); err != nil {
		return nil, err
	}
	return proj, nil
}

// AddMember enrolls a user; the membership cache entry for that user is
// dropped so the change takes effect immediately.
func (s *ProjectService) AddMember(ctx context.Context, p *auth.Principal, projectID common.ID, userID common.UserID, role string) (*project.Member, error) {
	if err := s.scopes.Authorize(ctx, p, projectID); err != nil {
		return nil, err
	}
	r, ok := project.ParseRole(role)
	if !ok {
		return nil, errors.InvalidParam("unknown project role").WithDetail(role)
	}

	m := &project.Member{
		ProjectID: projectID,
		UserID:    userID,
		Role:      r,
		AddedAt:   s.now().UTC(),
	}
	if err := s.projects.AddMember(ctx, m); err != nil {
		return nil, err
	}
	s.scopes.Invalidate(ctx, userID)
	return m, nil
}

// RemoveMember drops a user from the roster.
func (s *ProjectService) RemoveMember(ctx context.Context, p *auth.Principal, projectID common.ID, userID common.UserID) error {
	if err := s.scopes.Authorize(ctx, p, projectID); err != nil {
		return err
	}
	if err := s.projects.RemoveMember(ctx, projectID, userID); err != nil {
		return err
	}
	s.scopes.Invalidate(ctx, userID)
	return nil
}

// ListMembers returns the roster.
func (s *ProjectService) ListMembers(ctx context.Context, p *auth.Principal, projectID common.ID) ([]*project.Member, error) {
	if err := s.scopes.Authorize(ctx, p, projectID); err != nil {
		return nil, err
	}
	return s.projects.ListMembers(ctx, projectID)
}

// GetPermissions loads the project's permission matrix; projects without a
// stored matrix yield an empty grid.
func (s *ProjectService) GetPermissions(ctx context.Context, p *auth.Principal, projectID common.ID) (*permission.Matrix, error) {
	if err := s.scopes.Authorize(ctx, p, projectID); err != nil {
		return nil, err
	}
	return s.permissions.Get(ctx, projectID)
}

// PutPermissions replaces the matrix wholesale with what the caller sent.
// Only admins may rewrite permission grids.
func (s *ProjectService) PutPermissions(ctx context.Context, p *auth.Principal, projectID common.ID, grid map[string]map[string]bool) (*permission.Matrix, error) {
	if !p.IsAdmin() {
		return nil, errors.Forbidden("only admins may change permissions")
	}

	m := permission.NewMatrix(projectID)
	for role, perms := range grid {
		for perm, allowed := range perms {
			if err := m.Set(role, permission.Permission(perm), allowed); err != nil {
				return nil, err
			}
		}
	}
	if err := s.permissions.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
