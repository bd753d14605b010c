package schedule

import (
	"sort"
	"time"
)

// Comparator defines the presentation order for trackable items: overdue
// items first, then by declared priority (highest first), then by workflow
// status (least progressed first). Ties keep their original relative order;
// Sort uses a stable sort.
type Comparator struct {
	classifier Classifier

	// urgentAboveHigh controls where PriorityUrgent ranks. The legacy
	// ordering left urgent out of the rank table, so it fell into the
	// unknown bucket and sorted last. The default ranks urgent above high;
	// NewLegacyComparator preserves the old ordering.
	urgentAboveHigh bool
}

// NewComparator returns a Comparator that ranks urgent above high, using the
// given classifier for overdue determination.
func NewComparator(classifier Classifier) Comparator {
	return Comparator{classifier: classifier, urgentAboveHigh: true}
}

// NewLegacyComparator returns a Comparator that ranks urgent with the unknown
// bucket (after low), matching the historical ordering.
func NewLegacyComparator(classifier Classifier) Comparator {
	return Comparator{classifier: classifier, urgentAboveHigh: false}
}

// priorityRank maps a priority to its sort rank; lower sorts first.
func (c Comparator) priorityRank(p Priority) int {
	switch p {
	case PriorityUrgent:
		if c.urgentAboveHigh {
			return 0
		}
		return 4 // unknown bucket
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Compare returns a negative value when a sorts before b, positive when b
// sorts before a, and zero on a full tie. First non-zero key in the chain
// wins: overdue flag, priority rank, workflow rank.
func (c Comparator) Compare(a, b Trackable, now time.Time) int {
	aOver := c.classifier.IsOverdue(a, now)
	bOver := c.classifier.IsOverdue(b, now)
	if aOver != bOver {
		if aOver {
			return -1
		}
		return 1
	}

	if ra, rb := c.priorityRank(a.TrackingPriority()), c.priorityRank(b.TrackingPriority()); ra != rb {
		return ra - rb
	}

	return a.WorkflowRank() - b.WorkflowRank()
}

// Less adapts Compare to the sort.Interface convention.
func (c Comparator) Less(a, b Trackable, now time.Time) bool {
	return c.Compare(a, b, now) < 0
}

// Sort orders items in place using the comparator at the instant now.
// The sort is stable: items that tie on every key keep their relative order.
func Sort[T Trackable](items []T, cmp Comparator, now time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return cmp.Compare(items[i], items[j], now) < 0
	})
}
