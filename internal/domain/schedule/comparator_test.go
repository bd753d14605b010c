package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/buildmind/sitetrack/pkg/types/common"
)

func titles(items []stubItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.title
	}
	return out
}

func TestCompare_OverdueFirst(t *testing.T) {
	cmp := NewComparator(NewClassifier())

	overdue := stubItem{title: "overdue low", priority: PriorityLow, due: duePtr(testNow.Add(-time.Hour))}
	fresh := stubItem{title: "fresh high", priority: PriorityHigh, due: duePtr(testNow.AddDate(0, 0, 10))}

	// Overdue beats even a higher declared priority.
	assert.Negative(t, cmp.Compare(overdue, fresh, testNow))
	assert.Positive(t, cmp.Compare(fresh, overdue, testNow))
}

func TestCompare_PriorityWithinGroup(t *testing.T) {
	cmp := NewComparator(NewClassifier())

	high := stubItem{priority: PriorityHigh}
	medium := stubItem{priority: PriorityMedium}
	low := stubItem{priority: PriorityLow}
	unknown := stubItem{priority: Priority("bogus")}

	assert.Negative(t, cmp.Compare(high, medium, testNow))
	assert.Negative(t, cmp.Compare(medium, low, testNow))
	assert.Negative(t, cmp.Compare(low, unknown, testNow))
}

func TestCompare_StatusBreaksPriorityTie(t *testing.T) {
	cmp := NewComparator(NewClassifier())

	inProgress := stubItem{priority: PriorityHigh, rank: 1}
	fresh := stubItem{priority: PriorityHigh, rank: 0}
	unknownStatus := stubItem{priority: PriorityHigh, rank: WorkflowRankUnknown}

	assert.Negative(t, cmp.Compare(fresh, inProgress, testNow))
	assert.Negative(t, cmp.Compare(inProgress, unknownStatus, testNow))
	assert.Zero(t, cmp.Compare(fresh, fresh, testNow))
}

func TestSort_SpecOrdering(t *testing.T) {
	cmp := NewComparator(NewClassifier())

	items := []stubItem{
		{title: "low clean", priority: PriorityLow, due: duePtr(testNow.AddDate(0, 0, 14))},
		{title: "high overdue", priority: PriorityHigh, due: duePtr(testNow.AddDate(0, 0, -1))},
		{title: "high clean", priority: PriorityHigh, due: duePtr(testNow.AddDate(0, 0, 14))},
	}

	Sort(items, cmp, testNow)
	assert.Equal(t, []string{"high overdue", "high clean", "low clean"}, titles(items))
}

func TestSort_Stable(t *testing.T) {
	cmp := NewComparator(NewClassifier())

	// Four items tying on every key must keep their original order.
	items := []stubItem{
		{id: common.ID("a"), title: "a", priority: PriorityMedium, rank: 1},
		{id: common.ID("b"), title: "b", priority: PriorityMedium, rank: 1},
		{id: common.ID("c"), title: "c", priority: PriorityMedium, rank: 1},
		{id: common.ID("d"), title: "d", priority: PriorityMedium, rank: 1},
	}
	Sort(items, cmp, testNow)
	assert.Equal(t, []string{"a", "b", "c", "d"}, titles(items))
}

func TestUrgentRanking(t *testing.T) {
	urgent := stubItem{title: "urgent", priority: PriorityUrgent}
	high := stubItem{title: "high", priority: PriorityHigh}
	low := stubItem{title: "low", priority: PriorityLow}

	// Default interpretation: urgent outranks high.
	def := NewComparator(NewClassifier())
	items := []stubItem{low, high, urgent}
	Sort(items, def, testNow)
	assert.Equal(t, []string{"urgent", "high", "low"}, titles(items))

	// Legacy interpretation: urgent was missing from the rank table and fell
	// into the unknown bucket, sorting after low.
	legacy := NewLegacyComparator(NewClassifier())
	items = []stubItem{low, high, urgent}
	Sort(items, legacy, testNow)
	assert.Equal(t, []string{"high", "low", "urgent"}, titles(items))
}

func TestSort_MixedWorkload(t *testing.T) {
	cmp := NewComparator(NewClassifier())

	items := []stubItem{
		{title: "resolved high", priority: PriorityHigh, rank: 2, terminal: true, due: duePtr(testNow.AddDate(0, 0, -5))},
		{title: "new medium", priority: PriorityMedium, rank: 0},
		{title: "in-progress overdue", priority: PriorityLow, rank: 1, due: duePtr(testNow.Add(-2 * time.Hour))},
		{title: "new high", priority: PriorityHigh, rank: 0},
	}

	Sort(items, cmp, testNow)

	// The terminal item is immune to overdue promotion despite its past due
	// date, so only the in-progress one leads.
	assert.Equal(t, []string{"in-progress overdue", "new high", "resolved high", "new medium"}, titles(items))
}
