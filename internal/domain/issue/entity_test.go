package issue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

func newTestIssue(t *testing.T) *Issue {
	t.Helper()
	is, err := New(common.ID("proj-1"), "Crack in level 2 slab", common.UserID("user-1"))
	require.NoError(t, err)
	return is
}

func TestNew_Validation(t *testing.T) {
	_, err := New(common.ID("proj-1"), "", common.UserID("user-1"))
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	is := newTestIssue(t)
	assert.Equal(t, StatusNew, is.Status)
	assert.Equal(t, schedule.PriorityMedium, is.Priority)
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "ISS-0042", FormatCode(42))
	assert.Equal(t, "ISS-12345", FormatCode(12345))
}

func TestSetPriority_ClampsUrgent(t *testing.T) {
	is := newTestIssue(t)
	is.SetPriority(schedule.PriorityUrgent)
	assert.Equal(t, schedule.PriorityHigh, is.Priority)

	is.SetPriority(schedule.PriorityLow)
	assert.Equal(t, schedule.PriorityLow, is.Priority)
}

func TestResolve(t *testing.T) {
	is := newTestIssue(t)
	now := time.Now().UTC()

	assert.Error(t, is.Resolve("  ", now))

	require.NoError(t, is.Resolve("Injected epoxy, re-inspected", now))
	assert.Equal(t, StatusResolved, is.Status)
	assert.True(t, is.IsTerminal())
	require.NotNil(t, is.ResolvedAt)

	err := is.Resolve("again", now)
	assert.True(t, errors.IsCode(err, errors.CodeIssueAlreadyClosed))
}

func TestCloseAndReopen(t *testing.T) {
	is := newTestIssue(t)
	now := time.Now().UTC()

	// Reopening a live issue is invalid.
	assert.True(t, errors.IsCode(is.Reopen(now), errors.CodeInvalidState))

	require.NoError(t, is.Resolve("patched", now))
	require.NoError(t, is.Close(now))
	assert.True(t, errors.IsCode(is.Close(now), errors.CodeIssueAlreadyClosed))

	require.NoError(t, is.Reopen(now))
	assert.Equal(t, StatusInProgress, is.Status)
	assert.Empty(t, is.Resolution)
	assert.Nil(t, is.ResolvedAt)
}

func TestWorkflowRank(t *testing.T) {
	is := newTestIssue(t)
	assert.Equal(t, 0, is.WorkflowRank())

	is.Status = StatusResolved
	assert.Equal(t, 2, is.WorkflowRank())

	is.Status = Status("mystery")
	assert.Equal(t, schedule.WorkflowRankUnknown, is.WorkflowRank())
}

func TestTrackableContract(t *testing.T) {
	var _ schedule.Trackable = (*Issue)(nil)

	is := newTestIssue(t)
	due := time.Now().UTC().Add(-24 * time.Hour)
	is.DueDate = &due

	c := schedule.NewClassifier()
	assert.True(t, c.Classify(is, time.Now().UTC()).IsOverdue)

	require.NoError(t, is.Resolve("fixed", time.Now().UTC()))
	assert.False(t, c.Classify(is, time.Now().UTC()).IsOverdue)
}
