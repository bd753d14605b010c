package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/buildmind/sitetrack/internal/domain/calendar"
	"github.com/buildmind/sitetrack/internal/domain/issue"
	"github.com/buildmind/sitetrack/internal/domain/notification"
	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/internal/domain/task"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

var sweepNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type mockTaskRepo struct{ mock.Mock }

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id common.ID) (*task.Task, error) {
	args := m.Called(ctx, id)
	return nil, args.Error(1)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id common.ID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTaskRepo) List(ctx context.Context, f task.Filter, page common.Pagination) ([]*task.Task, int64, error) {
	args := m.Called(ctx, f, page)
	return nil, 0, args.Error(2)
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

type mockIssueRepo struct{ mock.Mock }

func (m *mockIssueRepo) Save(ctx context.Context, i *issue.Issue) error {
	return m.Called(ctx, i).Error(0)
}

func (m *mockIssueRepo) FindByID(ctx context.Context, id common.ID) (*issue.Issue, error) {
	args := m.Called(ctx, id)
	return nil, args.Error(1)
}

func (m *mockIssueRepo) Update(ctx context.Context, i *issue.Issue) error {
	return m.Called(ctx, i).Error(0)
}

func (m *mockIssueRepo) Delete(ctx context.Context, id common.ID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockIssueRepo) List(ctx context.Context, f issue.Filter, page common.Pagination) ([]*issue.Issue, int64, error) {
	args := m.Called(ctx, f, page)
	return nil, 0, args.Error(2)
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

type mockCalendarRepo struct{ mock.Mock }

func (m *mockCalendarRepo) Save(ctx context.Context, e *calendar.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockCalendarRepo) FindByID(ctx context.Context, id common.ID) (*calendar.Event, error) {
	args := m.Called(ctx, id)
	return nil, args.Error(1)
}

func (m *mockCalendarRepo) Update(ctx context.Context, e *calendar.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockCalendarRepo) Delete(ctx context.Context, id common.ID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCalendarRepo) ListForProject(ctx context.Context, projectID common.ID, rng common.DateRange, page common.Pagination) ([]*calendar.Event, int64, error) {
	args := m.Called(ctx, projectID, rng, page)
	return nil, 0, args.Error(2)
}

func (m *mockCalendarRepo) FindPendingReminders(ctx context.Context, asOf time.Time) ([]*calendar.Event, error) {
	args := m.Called(ctx, asOf)
	var events []*calendar.Event
	if args.Get(0) != nil {
		events = args.Get(0).([]*calendar.Event)
	}
	return events, args.Error(1)
}

func (m *mockCalendarRepo) MarkReminded(ctx context.Context, id common.ID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// memLedger is an in-memory notification.Ledger for transition tests.
type memLedger struct {
	mu      sync.Mutex
	entries map[string]*notification.LedgerEntry
}

func newMemLedger() *memLedger {
	return &memLedger{entries: map[string]*notification.LedgerEntry{}}
}

func ledgerKey(id common.ID, typ notification.Type, recipient common.UserID) string {
	return string(id) + "|" + string(typ) + "|" + string(recipient)
}

func (l *memLedger) Get(_ context.Context, relatedID common.ID, typ notification.Type, recipient common.UserID) (*notification.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[ledgerKey(relatedID, typ, recipient)], nil
}

func (l *memLedger) Put(_ context.Context, entry *notification.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[ledgerKey(entry.RelatedID, entry.Type, entry.RecipientID)] = entry
	return nil
}

func (l *memLedger) Clear(_ context.Context, relatedID common.ID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.entries {
		if e.RelatedID == relatedID {
			delete(l.entries, k)
		}
	}
	return nil
}

// captureChannel records deliveries and can fail selectively.
type captureChannel struct {
	delivered []*notification.Notification
	failFor   map[common.ID]error
}

func (c *captureChannel) Name() string { return "capture" }

func (c *captureChannel) Deliver(_ context.Context, n *notification.Notification) error {
	if err, ok := c.failFor[n.RelatedID]; ok {
		return err
	}
	c.delivered = append(c.delivered, n)
	return nil
}

type fixture struct {
	tasks   *mockTaskRepo
	issues  *mockIssueRepo
	events  *mockCalendarRepo
	ledger  *memLedger
	channel *captureChannel
	d       *Dispatcher
}

func newFixture(strict bool) *fixture {
	f := &fixture{
		tasks:   new(mockTaskRepo),
		issues:  new(mockIssueRepo),
		events:  new(mockCalendarRepo),
		ledger:  newMemLedger(),
		channel: &captureChannel{},
	}
	f.d = New(
		f.tasks, f.issues, f.events, f.ledger,
		[]notification.Channel{f.channel},
		schedule.NewClassifier(),
		Options{
			TaskUpcomingWindow:     24 * time.Hour,
			IssueWarningWindowDays: 3,
			StrictTransitions:      strict,
		},
		nil,
		logging.NewNop(),
	)
	f.d.now = func() time.Time { return sweepNow }
	return f
}

func overdueTask(t *testing.T, hoursLate int) *task.Task {
	t.Helper()
	tk, err := task.New(common.NewID(), "Pour slab", common.UserID(common.NewID()))
	require.NoError(t, err)
	due := sweepNow.Add(-time.Duration(hoursLate) * time.Hour)
	tk.DueDate = &due
	return tk
}

func dueTask(t *testing.T, hoursAhead int) *task.Task {
	t.Helper()
	tk, err := task.New(common.NewID(), "Inspect rebar", common.UserID(common.NewID()))
	require.NoError(t, err)
	due := sweepNow.Add(time.Duration(hoursAhead) * time.Hour)
	tk.DueDate = &due
	return tk
}

func TestOverdueSweep_NotifiesAssignee(t *testing.T) {
	f := newFixture(true)
	tk := overdueTask(t, 30)
	assignee := common.UserID(common.NewID())
	tk.AssigneeID = &assignee

	f.tasks.On("FindOverdue", mock.Anything, sweepNow).Return([]*task.Task{tk}, nil)
	f.issues.On("FindOverdue", mock.Anything, sweepNow).Return(nil, nil)

	require.NoError(t, f.d.OverdueSweep(context.Background()))
	require.Len(t, f.channel.delivered, 1)

	n := f.channel.delivered[0]
	assert.Equal(t, notification.TypeTaskOverdue, n.Type)
	assert.Equal(t, assignee, n.RecipientID)
	assert.Equal(t, schedule.UrgencyCritical, n.Priority)
	assert.Equal(t, tk.ID, n.RelatedID)
	assert.Contains(t, n.Message, "2 day(s) overdue")
}

func TestOverdueSweep_FallsBackToCreator(t *testing.T) {
	f := newFixture(true)
	tk := overdueTask(t, 2)

	f.tasks.On("FindOverdue", mock.Anything, sweepNow).Return([]*task.Task{tk}, nil)
	f.issues.On("FindOverdue", mock.Anything, sweepNow).Return(nil, nil)

	require.NoError(t, f.d.OverdueSweep(context.Background()))
	require.Len(t, f.channel.delivered, 1)
	assert.Equal(t, tk.CreatedBy, f.channel.delivered[0].RecipientID)
}

func TestOverdueSweep_StrictSuppressesRepeats(t *testing.T) {
	f := newFixture(true)
	tk := overdueTask(t, 30)

	f.tasks.On("FindOverdue", mock.Anything, sweepNow).Return([]*task.Task{tk}, nil)
	f.issues.On("FindOverdue", mock.Anything, sweepNow).Return(nil, nil)

	require.NoError(t, f.d.OverdueSweep(context.Background()))
	require.NoError(t, f.d.OverdueSweep(context.Background()))
	assert.Len(t, f.channel.delivered, 1)
}

func TestOverdueSweep_NonStrictNotifiesEveryTick(t *testing.T) {
	f := newFixture(false)
	tk := overdueTask(t, 30)

	f.tasks.On("FindOverdue", mock.Anything, sweepNow).Return([]*task.Task{tk}, nil)
	f.issues.On("FindOverdue", mock.Anything, sweepNow).Return(nil, nil)

	require.NoError(t, f.d.OverdueSweep(context.Background()))
	require.NoError(t, f.d.OverdueSweep(context.Background()))
	assert.Len(t, f.channel.delivered, 2)
}

func TestUpcomingSweep_SixHourEscalationNotifiesAgain(t *testing.T) {
	f := newFixture(true)
	tk := dueTask(t, 4)
	recipient := taskRecipient(tk)

	// A previous sweep, while the task was still outside the six-hour
	// cutoff, recorded medium.
	require.NoError(t, f.ledger.Put(context.Background(), &notification.LedgerEntry{
		RelatedID:   tk.ID,
		Type:        notification.TypeTaskUpcoming,
		RecipientID: recipient,
		Urgency:     schedule.UrgencyMedium,
		NotifiedAt:  sweepNow.Add(-6 * time.Hour),
	}))

	f.tasks.On("FindDueBetween", mock.Anything, sweepNow, sweepNow.Add(24*time.Hour)).Return([]*task.Task{tk}, nil)
	f.issues.On("FindDueBetween", mock.Anything, sweepNow, sweepNow.Add(3*24*time.Hour)).Return(nil, nil)

	require.NoError(t, f.d.UpcomingSweep(context.Background()))
	require.Len(t, f.channel.delivered, 1)
	assert.Equal(t, schedule.UrgencyHigh, f.channel.delivered[0].Priority)
}

func TestUpcomingSweep_SameUrgencySuppressed(t *testing.T) {
	f := newFixture(true)
	tk := dueTask(t, 20)

	require.NoError(t, f.ledger.Put(context.Background(), &notification.LedgerEntry{
		RelatedID:   tk.ID,
		Type:        notification.TypeTaskUpcoming,
		RecipientID: taskRecipient(tk),
		Urgency:     schedule.UrgencyMedium,
		NotifiedAt:  sweepNow.Add(-6 * time.Hour),
	}))

	f.tasks.On("FindDueBetween", mock.Anything, sweepNow, sweepNow.Add(24*time.Hour)).Return([]*task.Task{tk}, nil)
	f.issues.On("FindDueBetween", mock.Anything, sweepNow, sweepNow.Add(3*24*time.Hour)).Return(nil, nil)

	require.NoError(t, f.d.UpcomingSweep(context.Background()))
	assert.Empty(t, f.channel.delivered)
}

func TestUpcomingSweep_TaskPriorityTracksHoursRemaining(t *testing.T) {
	f := newFixture(true)
	soon := dueTask(t, 4)
	later := dueTask(t, 10)

	f.tasks.On("FindDueBetween", mock.Anything, sweepNow, sweepNow.Add(24*time.Hour)).Return([]*task.Task{soon, later}, nil)
	f.issues.On("FindDueBetween", mock.Anything, sweepNow, sweepNow.Add(3*24*time.Hour)).Return(nil, nil)

	require.NoError(t, f.d.UpcomingSweep(context.Background()))
	require.Len(t, f.channel.delivered, 2)

	byID := map[common.ID]*notification.Notification{}
	for _, n := range f.channel.delivered {
		byID[n.RelatedID] = n
	}
	assert.Equal(t, schedule.UrgencyHigh, byID[soon.ID].Priority)
	assert.Equal(t, schedule.UrgencyMedium, byID[later.ID].Priority)
}

func TestUpcomingSweep_SixHourBoundaryIsHigh(t *testing.T) {
	f := newFixture(true)
	tk := dueTask(t, 6)

	f.tasks.On("FindDueBetween", mock.Anything, sweepNow, sweepNow.Add(24*time.Hour)).Return([]*task.Task{tk}, nil)
	f.issues.On("FindDueBetween", mock.Anything, sweepNow, sweepNow.Add(3*24*time.Hour)).Return(nil, nil)

	require.NoError(t, f.d.UpcomingSweep(context.Background()))
	require.Len(t, f.channel.delivered, 1)
	assert.Equal(t, schedule.UrgencyHigh, f.channel.delivered[0].Priority)
}

func TestUpcomingSweep_MessageCarriesProjectDueDateAndHours(t *testing.T) {
	f := newFixture(true)
	tk := dueTask(t, 10)

	f.tasks.On("FindDueBetween", mock.Anything, sweepNow, sweepNow.Add(24*time.Hour)).Return([]*task.Task{tk}, nil)
	f.issues.On("FindDueBetween", mock.Anything, sweepNow, sweepNow.Add(3*24*time.Hour)).Return(nil, nil)

	require.NoError(t, f.d.UpcomingSweep(context.Background()))
	require.Len(t, f.channel.delivered, 1)

	n := f.channel.delivered[0]
	assert.Contains(t, n.Message, "project "+string(tk.ProjectID))
	assert.Contains(t, n.Message, tk.DueDate.Format("Jan 2, 2006"))
	assert.Contains(t, n.Message, "due in 10 hour(s)")
	assert.Equal(t, string(tk.ProjectID), n.Data["project_id"])
	assert.Equal(t, string(tk.Priority), n.Data["priority"])
	assert.Equal(t, tk.DueDate.UTC().Format(time.RFC3339), n.Data["due_date"])
}

func TestUpcomingSweep_IssueWarnings(t *testing.T) {
	f := newFixture(true)

	is, err := issue.New(common.NewID(), "Crane permit expiring", common.UserID(common.NewID()))
	require.NoError(t, err)
	due := sweepNow.Add(48 * time.Hour)
	is.DueDate = &due
	is.Code = "ISS-0007"

	f.tasks.On("FindDueBetween", mock.Anything, sweepNow, sweepNow.Add(24*time.Hour)).Return(nil, nil)
	f.issues.On("FindDueBetween", mock.Anything, sweepNow, sweepNow.Add(3*24*time.Hour)).Return([]*issue.Issue{is}, nil)

	require.NoError(t, f.d.UpcomingSweep(context.Background()))
	require.Len(t, f.channel.delivered, 1)

	n := f.channel.delivered[0]
	assert.Equal(t, notification.TypeIssueWarning, n.Type)
	assert.Equal(t, is.ReportedBy, n.RecipientID)
	assert.Equal(t, schedule.UrgencyMedium, n.Priority)
	assert.Contains(t, n.Message, "due in 2 day(s)")
}

func TestOverdueSweep_ItemFailureIsolated(t *testing.T) {
	f := newFixture(true)
	broken := overdueTask(t, 10)
	healthy := overdueTask(t, 10)
	f.channel.failFor = map[common.ID]error{
		broken.ID: errors.Internal("smtp down"),
	}

	f.tasks.On("FindOverdue", mock.Anything, sweepNow).Return([]*task.Task{broken, healthy}, nil)
	f.issues.On("FindOverdue", mock.Anything, sweepNow).Return(nil, nil)

	err := f.d.OverdueSweep(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 item(s) failed")

	// The healthy item was still delivered.
	require.Len(t, f.channel.delivered, 1)
	assert.Equal(t, healthy.ID, f.channel.delivered[0].RelatedID)
}

func TestOverdueSweep_FailedItemRetriesNextTick(t *testing.T) {
	f := newFixture(true)
	tk := overdueTask(t, 10)
	f.channel.failFor = map[common.ID]error{tk.ID: errors.Internal("smtp down")}

	f.tasks.On("FindOverdue", mock.Anything, sweepNow).Return([]*task.Task{tk}, nil)
	f.issues.On("FindOverdue", mock.Anything, sweepNow).Return(nil, nil)

	require.Error(t, f.d.OverdueSweep(context.Background()))

	// Delivery failed, so no ledger entry was written and the next tick
	// retries.
	f.channel.failFor = nil
	require.NoError(t, f.d.OverdueSweep(context.Background()))
	assert.Len(t, f.channel.delivered, 1)
}

func TestReminderSweep_NotifiesAttendeesOnce(t *testing.T) {
	f := newFixture(true)

	a1 := common.UserID(common.NewID())
	a2 := common.UserID(common.NewID())
	ev, err := calendar.New(common.NewID(), "Site walkthrough", sweepNow.Add(20*time.Minute), sweepNow.Add(80*time.Minute), common.UserID(common.NewID()))
	require.NoError(t, err)
	ev.ReminderMinutes = 30
	ev.Attendees = []common.UserID{a1, a2}

	f.events.On("FindPendingReminders", mock.Anything, sweepNow).Return([]*calendar.Event{ev}, nil)
	f.events.On("MarkReminded", mock.Anything, ev.ID, sweepNow).Return(nil)

	require.NoError(t, f.d.ReminderSweep(context.Background()))
	require.Len(t, f.channel.delivered, 2)
	assert.Equal(t, notification.TypeCalendarReminder, f.channel.delivered[0].Type)
	f.events.AssertCalled(t, "MarkReminded", mock.Anything, ev.ID, sweepNow)
}

func TestReminderSweep_NoAttendeesFallsBackToCreator(t *testing.T) {
	f := newFixture(true)

	ev, err := calendar.New(common.NewID(), "Permit review", sweepNow.Add(10*time.Minute), sweepNow.Add(40*time.Minute), common.UserID(common.NewID()))
	require.NoError(t, err)
	ev.ReminderMinutes = 15
	ev.Attendees = nil

	f.events.On("FindPendingReminders", mock.Anything, sweepNow).Return([]*calendar.Event{ev}, nil)
	f.events.On("MarkReminded", mock.Anything, ev.ID, sweepNow).Return(nil)

	require.NoError(t, f.d.ReminderSweep(context.Background()))
	require.Len(t, f.channel.delivered, 1)
	assert.Equal(t, ev.CreatedBy, f.channel.delivered[0].RecipientID)
}
