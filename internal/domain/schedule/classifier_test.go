package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildmind/sitetrack/pkg/types/common"
)

// stubItem is a minimal Trackable for exercising the policy functions.
type stubItem struct {
	id       common.ID
	project  common.ID
	title    string
	due      *time.Time
	priority Priority
	rank     int
	terminal bool
}

func (s stubItem) TrackingID() common.ID      { return s.id }
func (s stubItem) TrackingTitle() string      { return s.title }
func (s stubItem) TrackingProject() common.ID { return s.project }
func (s stubItem) DueAt() *time.Time          { return s.due }
func (s stubItem) TrackingPriority() Priority { return s.priority }
func (s stubItem) WorkflowRank() int          { return s.rank }
func (s stubItem) IsTerminal() bool           { return s.terminal }

func duePtr(t time.Time) *time.Time { return &t }

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestClassify_TerminalImmunity(t *testing.T) {
	c := NewClassifier()

	// Terminal items are never overdue or warning, even far past due.
	for _, due := range []*time.Time{
		duePtr(testNow.AddDate(0, 0, -365)),
		duePtr(testNow.Add(-time.Hour)),
		duePtr(testNow.Add(time.Hour)),
		nil,
	} {
		got := c.Classify(stubItem{due: due, terminal: true}, testNow)
		assert.False(t, got.IsOverdue)
		assert.False(t, got.IsWarning)
		assert.Equal(t, UrgencyNormal, got.Urgency)
		assert.Nil(t, got.DaysUntilDue)
	}
}

func TestClassify_NoDeadlineImmunity(t *testing.T) {
	c := NewClassifier()
	got := c.Classify(stubItem{due: nil}, testNow)
	assert.False(t, got.IsOverdue)
	assert.False(t, got.IsWarning)
	assert.Equal(t, UrgencyNormal, got.Urgency)
	assert.Nil(t, got.DaysUntilDue)
}

func TestClassify_Buckets(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name         string
		due          time.Time
		wantUrgency  Urgency
		wantOverdue  bool
		wantWarning  bool
		wantDaysDue  int // -1 means DaysUntilDue must be nil
		wantDaysOver int
	}{
		{"two days overdue", testNow.AddDate(0, 0, -2), UrgencyCritical, true, false, -1, 2},
		{"due in one day", testNow.AddDate(0, 0, 1), UrgencyHigh, false, true, 1, 0},
		{"due in three days", testNow.AddDate(0, 0, 3), UrgencyMedium, false, true, 3, 0},
		{"due in four days", testNow.AddDate(0, 0, 4), UrgencyNormal, false, false, 4, 0},
		{"due in an hour rounds up to one day", testNow.Add(time.Hour), UrgencyHigh, false, true, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(stubItem{due: duePtr(tt.due)}, testNow)
			assert.Equal(t, tt.wantUrgency, got.Urgency)
			assert.Equal(t, tt.wantOverdue, got.IsOverdue)
			assert.Equal(t, tt.wantWarning, got.IsWarning)
			assert.Equal(t, tt.wantDaysOver, got.DaysOverdue)
			if tt.wantDaysDue < 0 {
				assert.Nil(t, got.DaysUntilDue)
			} else {
				require.NotNil(t, got.DaysUntilDue)
				assert.Equal(t, tt.wantDaysDue, *got.DaysUntilDue)
			}
		})
	}
}

func TestClassify_OverdueWarningExclusive(t *testing.T) {
	c := NewClassifier()

	// Sweep due dates across a two-week window in hourly steps; the two flags
	// must never both be set.
	for offset := -7 * 24; offset <= 7*24; offset++ {
		due := testNow.Add(time.Duration(offset) * time.Hour)
		got := c.Classify(stubItem{due: &due}, testNow)
		assert.False(t, got.IsOverdue && got.IsWarning, "offset %dh", offset)
	}
}

func TestClassify_BoundaryInclusivity(t *testing.T) {
	c := NewClassifier()

	// Due exactly now: warning side, not overdue.
	atNow := c.Classify(stubItem{due: duePtr(testNow)}, testNow)
	assert.False(t, atNow.IsOverdue)
	assert.True(t, atNow.IsWarning)
	assert.Equal(t, UrgencyHigh, atNow.Urgency)
	require.NotNil(t, atNow.DaysUntilDue)
	assert.Equal(t, 0, *atNow.DaysUntilDue)

	// One microsecond before now: strictly past due.
	justPast := c.Classify(stubItem{due: duePtr(testNow.Add(-time.Microsecond))}, testNow)
	assert.True(t, justPast.IsOverdue)
	assert.False(t, justPast.IsWarning)
	assert.Equal(t, 1, justPast.DaysOverdue)
}

func TestClassify_Idempotent(t *testing.T) {
	c := NewClassifier()
	item := stubItem{due: duePtr(testNow.AddDate(0, 0, 2)), priority: PriorityHigh}
	first := c.Classify(item, testNow)
	second := c.Classify(item, testNow)
	assert.Equal(t, first, second)
}

func TestClassify_CustomHorizon(t *testing.T) {
	// The warning horizon is configuration, not a constant baked into the
	// call sites: a 5-day horizon flags an item due in 5 days.
	c := Classifier{WarningHorizonDays: 5, UrgentHorizonDays: 1, UpcomingHorizonDays: 10}
	got := c.Classify(stubItem{due: duePtr(testNow.AddDate(0, 0, 5))}, testNow)
	assert.True(t, got.IsWarning)
	assert.Equal(t, UrgencyMedium, got.Urgency)
}

func TestWithinUpcoming(t *testing.T) {
	c := NewClassifier()

	assert.True(t, c.WithinUpcoming(stubItem{due: duePtr(testNow.AddDate(0, 0, 7))}, testNow))
	assert.False(t, c.WithinUpcoming(stubItem{due: duePtr(testNow.AddDate(0, 0, 8))}, testNow))
	// Past-due and terminal items are not upcoming.
	assert.False(t, c.WithinUpcoming(stubItem{due: duePtr(testNow.Add(-time.Hour))}, testNow))
	assert.False(t, c.WithinUpcoming(stubItem{due: duePtr(testNow.AddDate(0, 0, 2)), terminal: true}, testNow))
	assert.False(t, c.WithinUpcoming(stubItem{}, testNow))

	// The upcoming window does not set the warning flag beyond the warning
	// horizon: due in 6 days is upcoming but classifies as normal.
	sixDays := stubItem{due: duePtr(testNow.AddDate(0, 0, 6))}
	assert.True(t, c.WithinUpcoming(sixDays, testNow))
	assert.Equal(t, UrgencyNormal, c.Classify(sixDays, testNow).Urgency)
}

func TestIsOverdue(t *testing.T) {
	c := NewClassifier()
	assert.True(t, c.IsOverdue(stubItem{due: duePtr(testNow.Add(-time.Minute))}, testNow))
	assert.False(t, c.IsOverdue(stubItem{due: duePtr(testNow)}, testNow))
	assert.False(t, c.IsOverdue(stubItem{due: duePtr(testNow.Add(-time.Minute)), terminal: true}, testNow))
	assert.False(t, c.IsOverdue(stubItem{}, testNow))
}
