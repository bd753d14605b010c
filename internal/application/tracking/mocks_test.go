package tracking

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/buildmind/sitetrack/internal/domain/issue"
	"github.com/buildmind/sitetrack/internal/domain/notification"
	"github.com/buildmind/sitetrack/internal/domain/project"
	"github.com/buildmind/sitetrack/internal/domain/task"
	"github.com/buildmind/sitetrack/internal/infrastructure/messaging/kafka"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id common.ID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id common.ID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTaskRepo) List(ctx context.Context, f task.Filter, page common.Pagination) ([]*task.Task, int64, error) {
	args := m.Called(ctx, f, page)
	var items []*task.Task
	if args.Get(0) != nil {
		items = args.Get(0).([]*task.Task)
	}
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockTaskRepo) FindOverdue(ctx context.Context, asOf time.Time) ([]*task.Task, error) {
	args := m.Called(ctx, asOf)
	var items []*task.Task
	if args.Get(0) != nil {
		items = args.Get(0).([]*task.Task)
	}
	return items, args.Error(1)
}

func (m *mockTaskRepo) FindDueBetween(ctx context.Context, from, to time.Time) ([]*task.Task, error) {
	args := m.Called(ctx, from, to)
	var items []*task.Task
	if args.Get(0) != nil {
		items = args.Get(0).([]*task.Task)
	}
	return items, args.Error(1)
}

type mockIssueRepo struct {
	mock.Mock
}

func (m *mockIssueRepo) Save(ctx context.Context, i *issue.Issue) error {
	return m.Called(ctx, i).Error(0)
}

func (m *mockIssueRepo) FindByID(ctx context.Context, id common.ID) (*issue.Issue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*issue.Issue), args.Error(1)
}

func (m *mockIssueRepo) Update(ctx context.Context, i *issue.Issue) error {
	return m.Called(ctx, i).Error(0)
}

func (m *mockIssueRepo) Delete(ctx context.Context, id common.ID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockIssueRepo) List(ctx context.Context, f issue.Filter, page common.Pagination) ([]*issue.Issue, int64, error) {
	args := m.Called(ctx, f, page)
	var items []*issue.Issue
	if args.Get(0) != nil {
		items = args.Get(0).([]*issue.Issue)
	}
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockIssueRepo) FindOverdue(ctx context.Context, asOf time.Time) ([]*issue.Issue, error) {
	args := m.Called(ctx, asOf)
	var items []*issue.Issue
	if args.Get(0) != nil {
		items = args.Get(0).([]*issue.Issue)
	}
	return items, args.Error(1)
}

func (m *mockIssueRepo) FindDueBetween(ctx context.Context, from, to time.Time) ([]*issue.Issue, error) {
	args := m.Called(ctx, from, to)
	var items []*issue.Issue
	if args.Get(0) != nil {
		items = args.Get(0).([]*issue.Issue)
	}
	return items, args.Error(1)
}

type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Save(ctx context.Context, p *project.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id common.ID) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *mockProjectRepo) FindByCode(ctx context.Context, code string) (*project.Project, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *mockProjectRepo) Update(ctx context.Context, p *project.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProjectRepo) List(ctx context.Context, page common.Pagination) ([]*project.Project, int64, error) {
	args := m.Called(ctx, page)
	return nil, 0, args.Error(2)
}

func (m *mockProjectRepo) ListForUser(ctx context.Context, userID common.UserID, page common.Pagination) ([]*project.Project, int64, error) {
	args := m.Called(ctx, userID, page)
	return nil, 0, args.Error(2)
}

func (m *mockProjectRepo) AddMember(ctx context.Context, mem *project.Member) error {
	return m.Called(ctx, mem).Error(0)
}

func (m *mockProjectRepo) RemoveMember(ctx context.Context, projectID common.ID, userID common.UserID) error {
	return m.Called(ctx, projectID, userID).Error(0)
}

func (m *mockProjectRepo) ListMembers(ctx context.Context, projectID common.ID) ([]*project.Member, error) {
	args := m.Called(ctx, projectID)
	var members []*project.Member
	if args.Get(0) != nil {
		members = args.Get(0).([]*project.Member)
	}
	return members, args.Error(1)
}

func (m *mockProjectRepo) MemberProjectIDs(ctx context.Context, userID common.UserID) ([]common.ID, error) {
	args := m.Called(ctx, userID)
	var ids []common.ID
	if args.Get(0) != nil {
		ids = args.Get(0).([]common.ID)
	}
	return ids, args.Error(1)
}

func (m *mockProjectRepo) IsMember(ctx context.Context, projectID common.ID, userID common.UserID) (bool, error) {
	args := m.Called(ctx, projectID, userID)
	return args.Bool(0), args.Error(1)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Get(ctx context.Context, relatedID common.ID, typ notification.Type, recipient common.UserID) (*notification.LedgerEntry, error) {
	args := m.Called(ctx, relatedID, typ, recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.LedgerEntry), args.Error(1)
}

func (m *mockLedger) Put(ctx context.Context, entry *notification.LedgerEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockLedger) Clear(ctx context.Context, relatedID common.ID) error {
	return m.Called(ctx, relatedID).Error(0)
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	taskEvents  []kafka.ChangeEvent
	issueEvents []kafka.ChangeEvent
}

func (p *capturePublisher) PublishTaskEvent(_ context.Context, ev kafka.ChangeEvent) {
	p.taskEvents = append(p.taskEvents, ev)
}

func (p *capturePublisher) PublishIssueEvent(_ context.Context, ev kafka.ChangeEvent) {
	p.issueEvents = append(p.issueEvents, ev)
}

// captureChannel records delivered notifications.
type captureChannel struct {
	delivered []*notification.Notification
	fail      error
}

func (c *captureChannel) Name() string { return "capture" }

func (c *captureChannel) Deliver(_ context.Context, n *notification.Notification) error {
	if c.fail != nil {
		return c.fail
	}
	c.delivered = append(c.delivered, n)
	return nil
}
