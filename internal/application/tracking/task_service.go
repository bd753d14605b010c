package tracking

import (
	"context"
	"time"

	"github.com/buildmind/sitetrack/internal/domain/notification"
	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/internal/domain/task"
	"github.com/buildmind/sitetrack/internal/infrastructure/auth"
	"github.com/buildmind/sitetrack/internal/infrastructure/messaging/kafka"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// CreateTaskInput carries the creation payload.
type CreateTaskInput struct {
	ProjectID   common.ID
	Title       string
	Description string
	Category    string
	Priority    string
	AssigneeID  *common.UserID
	DueDate     *time.Time
}

// UpdateTaskInput carries a partial update; nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *string
	AssigneeID  *common.UserID
	DueDate     *time.Time
	ClearDue    bool
	Progress    *int
}

// TaskService owns the task lifecycle and read path.
type TaskService struct {
	tasks      task.Repository
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

// NewTaskService wires the service. The ledger may be nil when no dispatcher
// runs alongside.
func NewTaskService(
	tasks task.Repository,
	scopes *ScopeResolver,
	filters *FilterBuilder,
	classifier schedule.Classifier,
	comparator schedule.Comparator,
	publisher kafka.EventPublisher,
	ledger notification.Ledger,
	channels []notification.Channel,
	logger logging.Logger,
) *TaskService {
	return &TaskService{
		tasks:      tasks,
		scopes:     scopes,
		filters:    filters,
		classifier: classifier,
		comparator: comparator,
		publisher:  publisher,
		ledger:     ledger,
		channels:   channels,
		logger:     logger.Named("task_service"),
		now:        time.Now,
	}
}

// Create validates and persists a new task.
func (s *TaskService) Create(ctx context.Context, p *auth.Principal, in CreateTaskInput) (*task.Task, error) {
	if err := s.scopes.Authorize(ctx, p, in.ProjectID); err != nil {
		return nil, err
	}

	t, err := task.New(in.ProjectID, in.Title, p.ID)
	if err != nil {
		return nil, err
	}
	t.Description = in.Description
	t.Category = in.Category
	t.AssigneeID = in.AssigneeID
	t.DueDate = in.DueDate
	if in.Priority != "" {
		prio, ok := schedule.ParsePriority(in.Priority)
		if !ok {
			return nil, errors.InvalidParam("unknown priority").WithDetail(in.Priority)
		}
		t.Priority = prio
	}

	if err := s.tasks.Save(ctx, t); err != nil {
		return nil, err
	}

	s.publisher.PublishTaskEvent(ctx, kafka.ChangeEvent{
		Kind: "task", Action: kafka.ActionCreated,
		ID: t.ID, ProjectID: t.ProjectID, ActorID: p.ID, At: s.now().UTC(),
	})
	if t.AssigneeID != nil && *t.AssigneeID != p.ID {
		s.notifyAssignment(ctx, t)
	}
	return t, nil
}

// Get loads one task, enforcing project access.
func (s *TaskService) Get(ctx context.Context, p *auth.Principal, id common.ID) (*AnnotatedTask, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.scopes.Authorize(ctx, p, t.ProjectID); err != nil {
		return nil, err
	}
	return &AnnotatedTask{Task: t, Deadline: s.classifier.Classify(t, s.now().UTC())}, nil
}

// List runs a filtered, scope-confined query and returns the page annotated
// and ordered by deadline pressure.
func (s *TaskService) List(ctx context.Context, p *auth.Principal, q ListQuery, page common.Pagination) ([]AnnotatedTask, int64, error) {
	if q.ProjectID != nil {
		if err := s.scopes.Authorize(ctx, p, *q.ProjectID); err != nil {
			return nil, 0, err
		}
	}
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, 0, err
	}

	filter := s.filters.BuildTaskFilter(q, scope)
	items, total, err := s.tasks.List(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}

	now := s.now().UTC()
	schedule.Sort(items, s.comparator, now)
	return annotateTasks(items, s.classifier, now), total, nil
}

// Update applies a partial update. A due date change resets the dispatch
// ledger so urgency transitions notify afresh.
func (s *TaskService) Update(ctx context.Context, p *auth.Principal, id common.ID, in UpdateTaskInput) (*task.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.scopes.Authorize(ctx, p, t.ProjectID); err != nil {
		return nil, err
	}

	prevAssignee := t.AssigneeID
	dueChanged := false

	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Category != nil {
		t.Category = *in.Category
	}
	if in.Priority != nil {
		prio, ok := schedule.ParsePriority(*in.Priority)
		if !ok {
			return nil, errors.InvalidParam("unknown priority").WithDetail(*in.Priority)
		}
		t.Priority = prio
	}
	if in.AssigneeID != nil {
		t.Reassign(in.AssigneeID, s.now().UTC())
	}
	if in.ClearDue {
		dueChanged = t.DueDate != nil
		t.DueDate = nil
	} else if in.DueDate != nil {
		dueChanged = t.DueDate == nil || !t.DueDate.Equal(*in.DueDate)
		t.DueDate = in.DueDate
	}
	if in.Progress != nil {
		if err := t.UpdateProgress(*in.Progress, s.now().UTC()); err != nil {
			return nil, err
		}
	}
	t.UpdatedAt = s.now().UTC()

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}

	if dueChanged && s.ledger != nil {
		if err := s.ledger.Clear(ctx, t.ID); err != nil {
			s.logger.Warn("ledger clear failed", logging.String("task_id", string(t.ID)), logging.Err(err))
		}
	}

	s.publisher.PublishTaskEvent(ctx, kafka.ChangeEvent{
		Kind: "task", Action: kafka.ActionUpdated,
		ID: t.ID, ProjectID: t.ProjectID, ActorID: p.ID, At: t.UpdatedAt,
	})
	if in.AssigneeID != nil && assigneeChanged(prevAssignee, t.AssigneeID) && *t.AssigneeID != p.ID {
		s.notifyAssignment(ctx, t)
	}
	return t, nil
}

// Complete moves the task to its terminal completed status.
func (s *TaskService) Complete(ctx context.Context, p *auth.Principal, id common.ID) (*task.Task, error) {
	return s.transition(ctx, p, id, kafka.ActionCompleted, func(t *task.Task) error {
		return t.Complete(s.now().UTC())
	})
}

// Cancel moves the task to its terminal cancelled status.
func (s *TaskService) Cancel(ctx context.Context, p *auth.Principal, id common.ID) (*task.Task, error) {
	return s.transition(ctx, p, id, kafka.ActionUpdated, func(t *task.Task) error {
		return t.Cancel(s.now().UTC())
	})
}

func (s *TaskService) transition(ctx context.Context, p *auth.Principal, id common.ID, action string, fn func(*task.Task) error) (*task.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.scopes.Authorize(ctx, p, t.ProjectID); err != nil {
		return nil, err
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	s.publisher.PublishTaskEvent(ctx, kafka.ChangeEvent{
		Kind: "task", Action: action,
		ID: t.ID, ProjectID: t.ProjectID, ActorID: p.ID, At: s.now().UTC(),
	})
	return t, nil
}

// Delete removes the task and its ledger state.
func (s *TaskService) Delete(ctx context.Context, p *auth.Principal, id common.ID) error {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.scopes.Authorize(ctx, p, t.ProjectID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	if s.ledger != nil {
		if err := s.ledger.Clear(ctx, id); err != nil {
			s.logger.Warn("ledger clear failed", logging.String("task_id", string(id)), logging.Err(err))
		}
	}
	s.publisher.PublishTaskEvent(ctx, kafka.ChangeEvent{
		Kind: "task", Action: kafka.ActionDeleted,
		ID: t.ID, ProjectID: t.ProjectID, ActorID: p.ID, At: s.now().UTC(),
	})
	return nil
}

func (s *TaskService) notifyAssignment(ctx context.Context, t *task.Task) {
	n, err := notification.New(notification.TypeAssignment, *t.AssigneeID,
		"Task assigned: "+t.Title, "You were assigned a task in project "+string(t.ProjectID)+".")
	if err != nil {
		s.logger.Warn("assignment notification build failed", logging.Err(err))
		return
	}
	n.RelatedID = t.ID
	n.RelatedKind = notification.RelatedTask
	for _, ch := range s.channels {
		if err := ch.Deliver(ctx, n); err != nil {
			s.logger.Warn("assignment delivery failed",
				logging.String("channel", ch.Name()),
				logging.String("task_id", string(t.ID)),
				logging.Err(err),
			)
		}
	}
}

func assigneeChanged(prev, next *common.UserID) bool {
	if next == nil {
		return prev != nil
	}
	return prev == nil || *prev != *next
}
