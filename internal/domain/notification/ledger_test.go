package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/buildmind/sitetrack/internal/domain/schedule"
)

func TestLedgerEntry_IsEscalation(t *testing.T) {
	tests := []struct {
		recorded schedule.Urgency
		next     schedule.Urgency
		want     bool
	}{
		{schedule.UrgencyNormal, schedule.UrgencyMedium, true},
		{schedule.UrgencyMedium, schedule.UrgencyHigh, true},
		{schedule.UrgencyHigh, schedule.UrgencyCritical, true},
		{schedule.UrgencyNormal, schedule.UrgencyCritical, true},

		// Same level never re-notifies.
		{schedule.UrgencyCritical, schedule.UrgencyCritical, false},
		{schedule.UrgencyMedium, schedule.UrgencyMedium, false},

		// Downward transitions never notify.
		{schedule.UrgencyCritical, schedule.UrgencyHigh, false},
		{schedule.UrgencyHigh, schedule.UrgencyNormal, false},
	}

	for _, tt := range tests {
		e := &LedgerEntry{Urgency: tt.recorded}
		assert.Equal(t, tt.want, e.IsEscalation(tt.next), "%s -> %s", tt.recorded, tt.next)
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(TypeTaskOverdue, "", "title", "msg")
	assert.Error(t, err)

	_, err = New(TypeTaskOverdue, "user-1", "", "msg")
	assert.Error(t, err)

	n, err := New(TypeTaskOverdue, "user-1", "Task overdue", "Pour slab is 2 days overdue")
	assert.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Nil(t, n.ReadAt)
}
