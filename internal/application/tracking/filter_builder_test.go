package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildmind/sitetrack/internal/domain/issue"
	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/internal/domain/task"
)

var builderNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testBuilder() *FilterBuilder {
	b := NewFilterBuilder(schedule.NewClassifier())
	b.now = func() time.Time { return builderNow }
	return b
}

func TestFilterBuilder_TaskStatuses(t *testing.T) {
	f := testBuilder().BuildTaskFilter(ListQuery{
		Statuses:   []string{"todo", " In_Progress "},
		Priorities: []string{"HIGH"},
	}, nil)
	assert.Equal(t, []task.Status{task.StatusTodo, task.StatusInProgress}, f.Statuses)
	assert.Equal(t, []schedule.Priority{schedule.PriorityHigh}, f.Priorities)
}

func TestFilterBuilder_UnknownStatusIgnored(t *testing.T) {
	f := testBuilder().BuildTaskFilter(ListQuery{Statuses: []string{"archived", "todo"}}, nil)
	assert.Equal(t, []task.Status{task.StatusTodo}, f.Statuses)
}

func TestFilterBuilder_AllValuesUnknownMeansNoConstraint(t *testing.T) {
	f := testBuilder().BuildIssueFilter(ListQuery{
		Statuses:   []string{"archived"},
		Priorities: []string{"blocker"},
	}, nil)
	assert.Nil(t, f.Statuses)
	assert.Nil(t, f.Priorities)
}

func TestFilterBuilder_OverdueOverridesDueRange(t *testing.T) {
	from := builderNow.Add(-48 * time.Hour)
	to := builderNow.Add(48 * time.Hour)

	f := testBuilder().BuildTaskFilter(ListQuery{
		Overdue: true,
		DueFrom: &from,
		DueTo:   &to,
	}, nil)
	require.NotNil(t, f.OverdueAsOf)
	assert.Equal(t, builderNow, *f.OverdueAsOf)
	assert.Nil(t, f.DueFrom)
	assert.Nil(t, f.DueTo)
}

func TestFilterBuilder_UpcomingWindow(t *testing.T) {
	f := testBuilder().BuildIssueFilter(ListQuery{Upcoming: true}, nil)
	require.NotNil(t, f.DueFrom)
	require.NotNil(t, f.DueTo)
	assert.Equal(t, builderNow, *f.DueFrom)
	assert.Equal(t, builderNow.Add(7*24*time.Hour), *f.DueTo)
	assert.True(t, f.ExcludeTerminal)
	assert.Nil(t, f.OverdueAsOf)
}

func TestFilterBuilder_OverdueWinsOverUpcoming(t *testing.T) {
	f := testBuilder().BuildTaskFilter(ListQuery{Overdue: true, Upcoming: true}, nil)
	require.NotNil(t, f.OverdueAsOf)
	assert.Nil(t, f.DueFrom)
	assert.Nil(t, f.DueTo)
	assert.False(t, f.ExcludeTerminal)
}

func TestFilterBuilder_InvertedDueRangeIgnored(t *testing.T) {
	from := builderNow
	to := builderNow.Add(-time.Hour)
	f := testBuilder().BuildTaskFilter(ListQuery{DueFrom: &from, DueTo: &to}, nil)
	assert.Nil(t, f.DueFrom)
	assert.Nil(t, f.DueTo)
}

func TestFilterBuilder_ScopePassesThrough(t *testing.T) {
	scope := &task.ProjectScope{}
	tf := testBuilder().BuildTaskFilter(ListQuery{}, scope)
	assert.Same(t, scope, tf.Scope)

	itf := testBuilder().BuildIssueFilter(ListQuery{}, scope)
	assert.Same(t, scope, itf.Scope)
}

func TestFilterBuilder_IssueStatuses(t *testing.T) {
	f := testBuilder().BuildIssueFilter(ListQuery{Statuses: []string{"new", "resolved"}}, nil)
	assert.Equal(t, []issue.Status{issue.StatusNew, issue.StatusResolved}, f.Statuses)
}

func TestFilterBuilder_SearchTrimmed(t *testing.T) {
	f := testBuilder().BuildTaskFilter(ListQuery{Search: "  rebar  "}, nil)
	assert.Equal(t, "rebar", f.Search)
}
