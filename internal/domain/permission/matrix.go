// Package permission implements the role × permission boolean grid. The grid
// is persisted generically: whatever role/permission pairs the client sends
// are stored and served back; only the admin short-circuit is policy.
package permission

import (
	"context"

	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Permission names a guarded capability. The set is open-ended; these
// constants cover the capabilities the backend itself checks.
type Permission string

const (
	PermTaskCreate     Permission = "task.create"
	PermTaskEdit       Permission = "task.edit"
	PermTaskDelete     Permission = "task.delete"
	PermIssueCreate    Permission = "issue.create"
	PermIssueResolve   Permission = "issue.resolve"
	PermDocumentUpload Permission = "document.upload"
	PermMemberManage   Permission = "member.manage"
	PermMatrixEdit     Permission = "matrix.edit"
)

// Matrix is a project-scoped grid of role → permission → allowed.
type Matrix struct {
	ProjectID common.ID                  `json:"project_id"`
	Grid      map[string]map[string]bool `json:"grid"`
}

// NewMatrix returns an empty grid for the project.
func NewMatrix(projectID common.ID) *Matrix {
	return &Matrix{ProjectID: projectID, Grid: map[string]map[string]bool{}}
}

// Allows reports whether the role holds the permission. The admin role is
// implicitly allowed everything regardless of grid contents.
func (m *Matrix) Allows(role string, perm Permission) bool {
	if role == "admin" {
		return true
	}
	perms, ok := m.Grid[role]
	if !ok {
		return false
	}
	return perms[string(perm)]
}

// Set records an allow/deny cell, creating the role row as needed.
func (m *Matrix) Set(role string, perm Permission, allowed bool) error {
	if role == "" {
		return errors.New(errors.CodeUnknownRole, "role must not be empty")
	}
	if m.Grid == nil {
		m.Grid = map[string]map[string]bool{}
	}
	row, ok := m.Grid[role]
	if !ok {
		row = map[string]bool{}
		m.Grid[role] = row
	}
	row[string(perm)] = allowed
	return nil
}

// Repository is the persistence contract for permission matrices.
type Repository interface {
	// Get loads the matrix for a project; a project with no stored matrix
	// yields an empty grid, not an error.
	Get(ctx context.Context, projectID common.ID) (*Matrix, error)

	// Put replaces the project's matrix wholesale ("persist what was sent").
	Put(ctx context.Context, m *Matrix) error
}
