// Package tracking is the application service layer for deadline-tracked
// work items: tasks and issues. It owns query filtering, deadline annotation
// and ordering, and the mutations that feed the change-event stream.
package tracking

import (
	"context"
	"time"

	"github.com/buildmind/sitetrack/internal/domain/project"
	"github.com/buildmind/sitetrack/internal/domain/task"
	"github.com/buildmind/sitetrack/internal/infrastructure/auth"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

const membershipTTL = 2 * time.Minute

// MembershipCache is the subset of the cache the resolver needs.
type MembershipCache interface {
	Get(ctx context.Context, key string, out any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ScopeResolver translates an authenticated principal into the project scope
// its list queries run under. Admins see everything; everyone else is
// confined to the projects they are a member of.
type ScopeResolver struct {
	projects project.Repository
	cache    MembershipCache
}

// NewScopeResolver builds a resolver. The cache may be nil, in which case
// every call hits the repository.
func NewScopeResolver(projects project.Repository, cache MembershipCache) *ScopeResolver {
	return &ScopeResolver{projects: projects, cache: cache}
}

func membershipKey(userID common.UserID) string {
	return "membership:" + string(userID)
}

// Resolve returns nil for admins (unrestricted) and the membership scope for
// everyone else. A user with no memberships gets an empty, match-nothing
// scope rather than an error.
func (r *ScopeResolver) Resolve(ctx context.Context, p *auth.Principal) (*task.ProjectScope, error) {
	if p.IsAdmin() {
		return nil, nil
	}

	var ids []common.ID
	if r.cache != nil {
		if err := r.cache.Get(ctx, membershipKey(p.ID), &ids); err == nil {
			return &task.ProjectScope{IDs: ids}, nil
		}
	}

	ids, err := r.projects.MemberProjectIDs(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []common.ID{}
	}
	if r.cache != nil {
		_ = r.cache.Set(ctx, membershipKey(p.ID), ids, membershipTTL)
	}
	return &task.ProjectScope{IDs: ids}, nil
}

// Authorize verifies the principal may touch the given project. Admins pass
// unconditionally.
func (r *ScopeResolver) Authorize(ctx context.Context, p *auth.Principal, projectID common.ID) error {
	if p.IsAdmin() {
		return nil
	}
	ok, err := r.projects.IsMember(ctx, projectID, p.ID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Forbidden("not a member of this project")
	}
	return nil
}

// Invalidate drops the cached membership for a user, called after roster
// changes.
func (r *ScopeResolver) Invalidate(ctx context.Context, userID common.UserID) {
	if r.cache != nil {
		_ = r.cache.Delete(ctx, membershipKey(userID))
	}
}
