package tracking

import (
	"context"
	"time"

	"github.com/buildmind/sitetrack/internal/domain/issue"
	"github.com/buildmind/sitetrack/internal/domain/notification"
	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/internal/infrastructure/auth"
	"github.com/buildmind/sitetrack/internal/infrastructure/messaging/kafka"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// CreateIssueInput carries the creation payload.
type CreateIssueInput struct {
	ProjectID   common.ID
	Title       string
	Description string
	Priority    string
	AssigneeID  *common.UserID
	DueDate     *time.Time
}

// UpdateIssueInput carries a partial update; nil fields are left untouched.
type UpdateIssueInput struct {
	Title       *string
	Description *string
	Priority    *string
	AssigneeID  *common.UserID
	DueDate     *time.Time
	ClearDue    bool
}

// IssueService owns the issue lifecycle and read path.
type IssueService struct {
	issues     issue.Repository
	scopes     *ScopeResolver
	filters    *FilterBuilder
	classifier schedule.Classifier
	comparator schedule.Comparator
	publisher  kafka.EventPublisher
	ledger     notification.Ledger
	channels   []notification.Channel
	logger     logging.Logger
	now        func() time.Time
}

// NewIssueService wires the service.
func NewIssueService(
	issues issue.Repository,
	scopes *ScopeResolver,
	filters *FilterBuilder,
	classifier schedule.Classifier,
	comparator schedule.Comparator,
	publisher kafka.EventPublisher,
	ledger notification.Ledger,
	channels []notification.Channel,
	logger logging.Logger,
) *IssueService {
	return &IssueService{
		issues:     issues,
		scopes:     scopes,
		filters:    filters,
		classifier: classifier,
		comparator: comparator,
		publisher:  publisher,
		ledger:     ledger,
		channels:   channels,
		logger:     logger.Named("issue_service"),
		now:        time.Now,
	}
}

// Create validates and persists a new issue; the repository assigns its
// sequential code.
func (s *IssueService) Create(ctx context.Context, p *auth.Principal, in CreateIssueInput) (*issue.Issue, error) {
	if err := s.scopes.Authorize(ctx, p, in.ProjectID); err != nil {
		return nil, err
	}

	is, err := issue.New(in.ProjectID, in.Title, p.ID)
	if err != nil {
		return nil, err
	}
	is.Description = in.Description
	is.AssigneeID = in.AssigneeID
	is.DueDate = in.DueDate
	if in.Priority != "" {
		prio, ok := schedule.ParsePriority(in.Priority)
		if !ok {
			return nil, errors.InvalidParam("unknown priority").WithDetail(in.Priority)
		}
		is.SetPriority(prio)
	}

	if err := s.issues.Save(ctx, is); err != nil {
		return nil, err
	}

	s.publisher.PublishIssueEvent(ctx, kafka.ChangeEvent{
		Kind: "issue", Action: kafka.ActionCreated,
		ID: is.ID, ProjectID: is.ProjectID, ActorID: p.ID, At: s.now().UTC(),
	})
	if is.AssigneeID != nil && *is.AssigneeID != p.ID {
		s.notifyAssignment(ctx, is)
	}
	return is, nil
}

// Get loads one issue, enforcing project access.
func (s *IssueService) Get(ctx context.Context, p *auth.Principal, id common.ID) (*AnnotatedIssue, error) {
	is, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.scopes.Authorize(ctx, p, is.ProjectID); err != nil {
		return nil, err
	}
	return &AnnotatedIssue{Issue: is, Deadline: s.classifier.Classify(is, s.now().UTC())}, nil
}

// List runs a filtered, scope-confined query and returns the page annotated
// and ordered by deadline pressure.
func (s *IssueService) List(ctx context.Context, p *auth.Principal, q ListQuery, page common.Pagination) ([]AnnotatedIssue, int64, error) {
	if q.ProjectID != nil {
		if err := s.scopes.Authorize(ctx, p, *q.ProjectID); err != nil {
			return nil, 0, err
		}
	}
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, 0, err
	}

	filter := s.filters.BuildIssueFilter(q, scope)
	items, total, err := s.issues.List(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}

	now := s.now().UTC()
	schedule.Sort(items, s.comparator, now)
	return annotateIssues(items, s.classifier, now), total, nil
}

// Update applies a partial update, resetting the dispatch ledger on a due
// date change.
func (s *IssueService) Update(ctx context.Context, p *auth.Principal, id common.ID, in UpdateIssueInput) (*issue.Issue, error) {
	is, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.scopes.Authorize(ctx, p, is.ProjectID); err != nil {
		return nil, err
	}

	prevAssignee := is.AssigneeID
	dueChanged := false

	if in.Title != nil {
		is.Title = *in.Title
	}
	if in.Description != nil {
		is.Description = *in.Description
	}
	if in.Priority != nil {
		prio, ok := schedule.ParsePriority(*in.Priority)
		if !ok {
			return nil, errors.InvalidParam("unknown priority").WithDetail(*in.Priority)
		}
		is.SetPriority(prio)
	}
	if in.AssigneeID != nil {
		is.AssigneeID = in.AssigneeID
	}
	if in.ClearDue {
		dueChanged = is.DueDate != nil
		is.DueDate = nil
	} else if in.DueDate != nil {
		dueChanged = is.DueDate == nil || !is.DueDate.Equal(*in.DueDate)
		is.DueDate = in.DueDate
	}
	is.UpdatedAt = s.now().UTC()

	if err := s.issues.Update(ctx, is); err != nil {
		return nil, err
	}

	if dueChanged && s.ledger != nil {
		if err := s.ledger.Clear(ctx, is.ID); err != nil {
			s.logger.Warn("ledger clear failed", logging.String("issue_id", string(is.ID)), logging.Err(err))
		}
	}

	s.publisher.PublishIssueEvent(ctx, kafka.ChangeEvent{
		Kind: "issue", Action: kafka.ActionUpdated,
		ID: is.ID, ProjectID: is.ProjectID, ActorID: p.ID, At: is.UpdatedAt,
	})
	if in.AssigneeID != nil && assigneeChanged(prevAssignee, is.AssigneeID) && *is.AssigneeID != p.ID {
		s.notifyAssignment(ctx, is)
	}
	return is, nil
}

// Start moves the issue into work.
func (s *IssueService) Start(ctx context.Context, p *auth.Principal, id common.ID) (*issue.Issue, error) {
	return s.transition(ctx, p, id, kafka.ActionUpdated, func(is *issue.Issue) error {
		return is.Start(s.now().UTC())
	})
}

// Resolve closes out the issue with a resolution note.
func (s *IssueService) Resolve(ctx context.Context, p *auth.Principal, id common.ID, resolution string) (*issue.Issue, error) {
	return s.transition(ctx, p, id, kafka.ActionResolved, func(is *issue.Issue) error {
		return is.Resolve(resolution, s.now().UTC())
	})
}

// Close moves a resolved issue to closed.
func (s *IssueService) Close(ctx context.Context, p *auth.Principal, id common.ID) (*issue.Issue, error) {
	return s.transition(ctx, p, id, kafka.ActionUpdated, func(is *issue.Issue) error {
		return is.Close(s.now().UTC())
	})
}

// Reopen brings a terminal issue back into work. Ledger state is cleared so
// renewed deadline pressure notifies from a clean slate.
func (s *IssueService) Reopen(ctx context.Context, p *auth.Principal, id common.ID) (*issue.Issue, error) {
	is, err := s.transition(ctx, p, id, kafka.ActionUpdated, func(is *issue.Issue) error {
		return is.Reopen(s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	if s.ledger != nil {
		if err := s.ledger.Clear(ctx, is.ID); err != nil {
			s.logger.Warn("ledger clear failed", logging.String("issue_id", string(is.ID)), logging.Err(err))
		}
	}
	return is, nil
}

func (s *IssueService) transition(ctx context.Context, p *auth.Principal, id common.ID, action string, fn func(*issue.Issue) error) (*issue.Issue, error) {
	is, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.scopes.Authorize(ctx, p, is.ProjectID); err != nil {
		return nil, err
	}
	if err := fn(is); err != nil {
		return nil, err
	}
	if err := s.issues.Update(ctx, is); err != nil {
		return nil, err
	}
	s.publisher.PublishIssueEvent(ctx, kafka.ChangeEvent{
		Kind: "issue", Action: action,
		ID: is.ID, ProjectID: is.ProjectID, ActorID: p.ID, At: s.now().UTC(),
	})
	return is, nil
}

// Delete removes the issue and its ledger state.
func (s *IssueService) Delete(ctx context.Context, p *auth.Principal, id common.ID) error {
	is, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.scopes.Authorize(ctx, p, is.ProjectID); err != nil {
		return err
	}
	if err := s.issues.Delete(ctx, id); err != nil {
		return err
	}
	if s.ledger != nil {
		if err := s.ledger.Clear(ctx, id); err != nil {
			s.logger.Warn("ledger clear failed", logging.String("issue_id", string(id)), logging.Err(err))
		}
	}
	s.publisher.PublishIssueEvent(ctx, kafka.ChangeEvent{
		Kind: "issue", Action: kafka.ActionDeleted,
		ID: is.ID, ProjectID: is.ProjectID, ActorID: p.ID, At: s.now().UTC(),
	})
	return nil
}

func (s *IssueService) notifyAssignment(ctx context.Context, is *issue.Issue) {
	n, err := notification.New(notification.TypeAssignment, *is.AssigneeID,
		"Issue assigned: "+is.Code, "You were assigned issue "+is.Code+": "+is.Title+".")
	if err != nil {
		s.logger.Warn("assignment notification build failed", logging.Err(err))
		return
	}
	n.RelatedID = is.ID
	n.RelatedKind = notification.RelatedIssue
	for _, ch := range s.channels {
		if err := ch.Deliver(ctx, n); err != nil {
			s.logger.Warn("assignment delivery failed",
				logging.String("channel", ch.Name()),
				logging.String("issue_id", string(is.ID)),
				logging.Err(err),
			)
		}
	}
}
