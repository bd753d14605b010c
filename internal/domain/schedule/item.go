// Package schedule implements the shared deadline policy for SiteTrack:
// classification of trackable items (tasks, issues, anything with a due date
// and a completion state) into urgency buckets, and the presentation ordering
// used by every list surface and by the notification dispatcher. Both are
// pure functions of their inputs; the current time is always injected, never
// read from the system clock.
package schedule

import (
	"time"

	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Priority is the declared importance of a trackable item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	// PriorityUrgent is only assignable to tasks; issues use the three-level
	// scale. Its rank relative to PriorityHigh is a Comparator option.
	PriorityUrgent Priority = "urgent"
)

// ParsePriority maps a raw string to a Priority, reporting whether the value
// is one of the known levels.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(s), true
	}
	return "", false
}

// WorkflowRankUnknown is the rank assigned to statuses outside an item's
// declared workflow sequence; it sorts after every known status.
const WorkflowRankUnknown = 1 << 30

// Trackable is the abstract shape the deadline policy operates on. Task and
// Issue both satisfy it; the policy never cares which concrete kind it is
// given.
type Trackable interface {
	// TrackingID identifies the item for notification keying.
	TrackingID() common.ID

	// TrackingTitle is the human-readable label carried into notifications.
	TrackingTitle() string

	// TrackingProject is the owning project, carried into notification
	// payloads alongside the title.
	TrackingProject() common.ID

	// DueAt returns the item's due date, or nil when it has none. An item
	// without a due date is never overdue and never in warning.
	DueAt() *time.Time

	// TrackingPriority is the declared priority level.
	TrackingPriority() Priority

	// WorkflowRank is the position of the item's current status in its fixed
	// workflow sequence (0-based, earlier means less progressed). Statuses
	// outside the sequence must report WorkflowRankUnknown.
	WorkflowRank() int

	// IsTerminal reports whether the item's status is in the terminal subset
	// (completed, cancelled, resolved, closed). Terminal items can never be
	// overdue or warning regardless of due date.
	IsTerminal() bool
}
