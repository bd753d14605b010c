// Package project defines the Project aggregate, its member roster, and the
// repository contract. Project membership is the unit of authorization
// scoping: every non-admin query is implicitly restricted to the caller's
// projects.
package project

import (
	"strings"
	"time"

	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Status is the lifecycle state of a project.
type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// ParseStatus maps a raw string to a Status, reporting whether it is known.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPlanning, StatusActive, StatusOnHold, StatusCompleted, StatusArchived:
		return Status(s), true
	}
	return "", false
}

// Role is a member's position within a project.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
	RoleViewer  Role = "viewer"
)

// ParseRole maps a raw string to a Role, reporting whether it is known.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOwner, RoleManager, RoleMember, RoleViewer:
		return Role(s), true
	}
	return "", false
}

// Project is a construction project with a member roster.
type Project struct {
	ID          common.ID  `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedBy   common.UserID `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Member links a user to a project with a role.
type Member struct {
	ProjectID common.ID     `json:"project_id"`
	UserID    common.UserID `json:"user_id"`
	Role      Role          `json:"role"`
	AddedAt   time.Time     `json:"added_at"`
}

// New creates a Project with validation. The creator becomes its owner.
func New(code, name string, createdBy common.UserID) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.InvalidParam("project name must not be empty")
	}
	if strings.TrimSpace(code) == "" {
		return nil, errors.InvalidParam("project code must not be empty")
	}
	if createdBy == "" {
		return nil, errors.InvalidParam("creator id is required")
	}

	now := time.Now().UTC()
	return &Project{
		ID:        common.NewID(),
		Code:      strings.ToUpper(strings.TrimSpace(code)),
		Name:      strings.TrimSpace(name),
		Status:    StatusPlanning,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
