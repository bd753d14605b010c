package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/buildmind/sitetrack/internal/domain/notification"
	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/internal/domain/task"
	"github.com/buildmind/sitetrack/internal/domain/user"
	"github.com/buildmind/sitetrack/internal/infrastructure/auth"
	"github.com/buildmind/sitetrack/internal/infrastructure/messaging/kafka"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

var serviceNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type taskServiceFixture struct {
	tasks     *mockTaskRepo
	projects  *mockProjectRepo
	ledger    *mockLedger
	publisher *capturePublisher
	channel   *captureChannel
	svc       *TaskService
}

func newTaskFixture() *taskServiceFixture {
	f := &taskServiceFixture{
		tasks:     new(mockTaskRepo),
		projects:  new(mockProjectRepo),
		ledger:    new(mockLedger),
		publisher: new(capturePublisher),
		channel:   new(captureChannel),
	}
	classifier := schedule.NewClassifier()
	f.svc = NewTaskService(
		f.tasks,
		NewScopeResolver(f.projects, nil),
		NewFilterBuilder(classifier),
		classifier,
		schedule.NewComparator(classifier),
		f.publisher,
		f.ledger,
		[]notification.Channel{f.channel},
		logging.NewNop(),
	)
	f.svc.now = func() time.Time { return serviceNow }
	return f
}

func memberPrincipal() *auth.Principal {
	return &auth.Principal{ID: common.UserID(common.NewID()), Email: "pm@site.example", Role: user.RoleUser}
}

func adminPrincipal() *auth.Principal {
	return &auth.Principal{ID: common.UserID(common.NewID()), Email: "admin@site.example", Role: user.RoleAdmin}
}

func fixtureTask(t *testing.T, projectID common.ID) *task.Task {
	t.Helper()
	tk, err := task.New(projectID, "Pour slab", common.UserID(common.NewID()))
	require.NoError(t, err)
	return tk
}

func TestTaskService_Create(t *testing.T) {
	f := newTaskFixture()
	p := memberPrincipal()
	projectID := common.NewID()
	due := serviceNow.Add(48 * time.Hour)

	f.projects.On("IsMember", mock.Anything, projectID, p.ID).Return(true, nil)
	f.tasks.On("Save", mock.Anything, mock.AnythingOfType("*task.Task")).Return(nil)

	created, err := f.svc.Create(context.Background(), p, CreateTaskInput{
		ProjectID: projectID,
		Title:     "Pour slab",
		Priority:  "high",
		DueDate:   &due,
	})
	require.NoError(t, err)
	assert.Equal(t, schedule.PriorityHigh, created.Priority)
	assert.Equal(t, p.ID, created.CreatedBy)

	require.Len(t, f.publisher.taskEvents, 1)
	assert.Equal(t, kafka.ActionCreated, f.publisher.taskEvents[0].Action)
	assert.Empty(t, f.channel.delivered)
}

func TestTaskService_CreateForbiddenOutsideProject(t *testing.T) {
	f := newTaskFixture()
	p := memberPrincipal()
	projectID := common.NewID()

	f.projects.On("IsMember", mock.Anything, projectID, p.ID).Return(false, nil)

	_, err := f.svc.Create(context.Background(), p, CreateTaskInput{ProjectID: projectID, Title: "x"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeForbidden, errors.GetCode(err))
	f.tasks.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTaskService_CreateWithAssigneeNotifies(t *testing.T) {
	f := newTaskFixture()
	p := memberPrincipal()
	projectID := common.NewID()
	assignee := common.UserID(common.NewID())

	f.projects.On("IsMember", mock.Anything, projectID, p.ID).Return(true, nil)
	f.tasks.On("Save", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Create(context.Background(), p, CreateTaskInput{
		ProjectID:  projectID,
		Title:      "Inspect rebar",
		AssigneeID: &assignee,
	})
	require.NoError(t, err)
	require.Len(t, f.channel.delivered, 1)
	assert.Equal(t, notification.TypeAssignment, f.channel.delivered[0].Type)
	assert.Equal(t, assignee, f.channel.delivered[0].RecipientID)
}

func TestTaskService_AdminSkipsMembershipCheck(t *testing.T) {
	f := newTaskFixture()
	p := adminPrincipal()
	projectID := common.NewID()

	f.tasks.On("Save", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Create(context.Background(), p, CreateTaskInput{ProjectID: projectID, Title: "Audit"})
	require.NoError(t, err)
	f.projects.AssertNotCalled(t, "IsMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskService_ListScopedToMembership(t *testing.T) {
	f := newTaskFixture()
	p := memberPrincipal()
	projectID := common.NewID()

	f.projects.On("MemberProjectIDs", mock.Anything, p.ID).Return([]common.ID{projectID}, nil)

	var gotFilter task.Filter
	f.tasks.On("List", mock.Anything, mock.AnythingOfType("task.Filter"), mock.Anything).
		Run(func(args mock.Arguments) { gotFilter = args.Get(1).(task.Filter) }).
		Return([]*task.Task{}, int64(0), nil)

	_, _, err := f.svc.List(context.Background(), p, ListQuery{}, common.Pagination{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.NotNil(t, gotFilter.Scope)
	assert.Equal(t, []common.ID{projectID}, gotFilter.Scope.IDs)
}

func TestTaskService_ListEmptyMembershipMatchesNothing(t *testing.T) {
	f := newTaskFixture()
	p := memberPrincipal()

	f.projects.On("MemberProjectIDs", mock.Anything, p.ID).Return(nil, nil)

	var gotFilter task.Filter
	f.tasks.On("List", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { gotFilter = args.Get(1).(task.Filter) }).
		Return([]*task.Task{}, int64(0), nil)

	_, _, err := f.svc.List(context.Background(), p, ListQuery{}, common.Pagination{})
	require.NoError(t, err)
	require.NotNil(t, gotFilter.Scope)
	assert.Empty(t, gotFilter.Scope.IDs)
}

func TestTaskService_ListAdminUnrestricted(t *testing.T) {
	f := newTaskFixture()
	p := adminPrincipal()

	var gotFilter task.Filter
	f.tasks.On("List", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { gotFilter = args.Get(1).(task.Filter) }).
		Return([]*task.Task{}, int64(0), nil)

	_, _, err := f.svc.List(context.Background(), p, ListQuery{}, common.Pagination{})
	require.NoError(t, err)
	assert.Nil(t, gotFilter.Scope)
}

func TestTaskService_ListOrdersByDeadlinePressure(t *testing.T) {
	f := newTaskFixture()
	p := adminPrincipal()
	projectID := common.NewID()

	overdue := fixtureTask(t, projectID)
	overdueDue := serviceNow.Add(-24 * time.Hour)
	overdue.DueDate = &overdueDue
	overdue.Priority = schedule.PriorityLow

	urgent := fixtureTask(t, projectID)
	urgentDue := serviceNow.Add(12 * time.Hour)
	urgent.DueDate = &urgentDue
	urgent.Priority = schedule.PriorityHigh

	f.tasks.On("List", mock.Anything, mock.Anything, mock.Anything).
		Return([]*task.Task{urgent, overdue}, int64(2), nil)

	items, total, err := f.svc.List(context.Background(), p, ListQuery{}, common.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)

	// The overdue low-priority task sorts ahead of everything else.
	assert.Equal(t, overdue.ID, items[0].ID)
	assert.True(t, items[0].Deadline.IsOverdue)
	assert.Equal(t, schedule.UrgencyCritical, items[0].Deadline.Urgency)
	assert.False(t, items[1].Deadline.IsOverdue)
}

func TestTaskService_UpdateDueDateClearsLedger(t *testing.T) {
	f := newTaskFixture()
	p := memberPrincipal()
	projectID := common.NewID()

	tk := fixtureTask(t, projectID)
	oldDue := serviceNow.Add(24 * time.Hour)
	tk.DueDate = &oldDue

	f.projects.On("IsMember", mock.Anything, projectID, p.ID).Return(true, nil)
	f.tasks.On("FindByID", mock.Anything, tk.ID).Return(tk, nil)
	f.tasks.On("Update", mock.Anything, tk).Return(nil)
	f.ledger.On("Clear", mock.Anything, tk.ID).Return(nil)

	newDue := serviceNow.Add(96 * time.Hour)
	_, err := f.svc.Update(context.Background(), p, tk.ID, UpdateTaskInput{DueDate: &newDue})
	require.NoError(t, err)
	f.ledger.AssertCalled(t, "Clear", mock.Anything, tk.ID)
}

func TestTaskService_UpdateSameDueDateKeepsLedger(t *testing.T) {
	f := newTaskFixture()
	p := memberPrincipal()
	projectID := common.NewID()

	tk := fixtureTask(t, projectID)
	due := serviceNow.Add(24 * time.Hour)
	tk.DueDate = &due

	f.projects.On("IsMember", mock.Anything, projectID, p.ID).Return(true, nil)
	f.tasks.On("FindByID", mock.Anything, tk.ID).Return(tk, nil)
	f.tasks.On("Update", mock.Anything, tk).Return(nil)

	sameDue := due
	_, err := f.svc.Update(context.Background(), p, tk.ID, UpdateTaskInput{DueDate: &sameDue})
	require.NoError(t, err)
	f.ledger.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestTaskService_CompleteTwiceConflicts(t *testing.T) {
	f := newTaskFixture()
	p := memberPrincipal()
	projectID := common.NewID()

	tk := fixtureTask(t, projectID)
	require.NoError(t, tk.Complete(serviceNow))

	f.projects.On("IsMember", mock.Anything, projectID, p.ID).Return(true, nil)
	f.tasks.On("FindByID", mock.Anything, tk.ID).Return(tk, nil)

	_, err := f.svc.Complete(context.Background(), p, tk.ID)
	require.Error(t, err)
	assert.Equal(t, errors.CodeTaskAlreadyClosed, errors.GetCode(err))
	f.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTaskService_DeleteClearsLedger(t *testing.T) {
	f := newTaskFixture()
	p := adminPrincipal()
	tk := fixtureTask(t, common.NewID())

	f.tasks.On("FindByID", mock.Anything, tk.ID).Return(tk, nil)
	f.tasks.On("Delete", mock.Anything, tk.ID).Return(nil)
	f.ledger.On("Clear", mock.Anything, tk.ID).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), p, tk.ID))
	f.ledger.AssertCalled(t, "Clear", mock.Anything, tk.ID)
	require.Len(t, f.publisher.taskEvents, 1)
	assert.Equal(t, kafka.ActionDeleted, f.publisher.taskEvents[0].Action)
}
