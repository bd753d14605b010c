package project

import (
	"context"

	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Repository is the persistence contract for projects and their rosters.
type Repository interface {
	Save(ctx context.Context, p *Project) error
	FindByID(ctx context.Context, id common.ID) (*Project, error)
	FindByCode(ctx context.Context, code string) (*Project, error)
	Update(ctx context.Context, p *Project) error
	List(ctx context.Context, page common.Pagination) ([]*Project, int64, error)
	ListForUser(ctx context.Context, userID common.UserID, page common.Pagination) ([]*Project, int64, error)

	// AddMember attaches a user to the roster; adding an existing member is a
	// conflict.
	AddMember(ctx context.Context, m *Member) error
	RemoveMember(ctx context.Context, projectID common.ID, userID common.UserID) error
	ListMembers(ctx context.Context, projectID common.ID) ([]*Member, error)

	// MemberProjectIDs returns the IDs of every project the user belongs to.
	// This powers the implicit authorization filter on list queries.
	MemberProjectIDs(ctx context.Context, userID common.UserID) ([]common.ID, error)

	// IsMember reports whether the user belongs to the project.
	IsMember(ctx context.Context, projectID common.ID, userID common.UserID) (bool, error)
}
