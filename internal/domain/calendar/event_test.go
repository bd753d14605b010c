package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildmind/sitetrack/pkg/types/common"
)

func TestNew_Validation(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	_, err := New("proj-1", " ", start, start.Add(time.Hour), "user-1")
	assert.Error(t, err)

	_, err = New("proj-1", "Safety walk", time.Time{}, time.Time{}, "user-1")
	assert.Error(t, err)

	_, err = New("proj-1", "Safety walk", start, start.Add(-time.Hour), "user-1")
	assert.Error(t, err)

	e, err := New("proj-1", "Safety walk", start, start.Add(time.Hour), "user-1")
	require.NoError(t, err)
	assert.Equal(t, common.ID("proj-1"), e.ProjectID)
}

func TestReminderDue(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	e, err := New("proj-1", "Concrete delivery", start, start.Add(time.Hour), "user-1")
	require.NoError(t, err)

	// No reminder configured.
	assert.False(t, e.ReminderDue(start.Add(-time.Minute)))

	e.ReminderMinutes = 30

	// Before the window opens.
	assert.False(t, e.ReminderDue(start.Add(-31*time.Minute)))
	// Window boundary is inclusive.
	assert.True(t, e.ReminderDue(start.Add(-30*time.Minute)))
	assert.True(t, e.ReminderDue(start.Add(-time.Minute)))
	// Once the event has started, reminding is pointless.
	assert.False(t, e.ReminderDue(start))

	// Reminding is one-shot.
	e.MarkReminded(start.Add(-20 * time.Minute))
	assert.False(t, e.ReminderDue(start.Add(-10*time.Minute)))
}
