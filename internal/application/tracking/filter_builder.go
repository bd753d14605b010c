package tracking

import (
	"strings"
	"time"

	"github.com/buildmind/sitetrack/internal/domain/issue"
	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/internal/domain/task"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// ListQuery carries the raw, already-parsed list parameters from the HTTP
// layer. Slices hold raw strings so the builder owns enum interpretation and
// the handlers stay dumb.
type ListQuery struct {
	ProjectID  *common.ID
	Statuses   []string
	Priorities []string
	AssigneeID *common.UserID
	Category   string
	Search     string

	DueFrom *time.Time
	DueTo   *time.Time

	// Overdue narrows to items whose due date has passed. It overrides any
	// explicit due range.
	Overdue bool

	// Upcoming narrows to non-terminal items due within the upcoming
	// horizon. When Overdue is also set, Overdue wins.
	Upcoming bool
}

// FilterBuilder turns ListQuery values into repository filters. Listing never
// hard-fails on a bad parameter: unknown enum values, inverted due ranges,
// and conflicting flags degrade to "no constraint" instead of erroring.
type FilterBuilder struct {
	classifier schedule.Classifier
	now        func() time.Time
}

// NewFilterBuilder builds a FilterBuilder on the shared classifier horizons.
func NewFilterBuilder(classifier schedule.Classifier) *FilterBuilder {
	return &FilterBuilder{classifier: classifier, now: time.Now}
}

func (b *FilterBuilder) priorities(raw []string) []schedule.Priority {
	var out []schedule.Priority
	for _, s := range raw {
		if p, ok := schedule.ParsePriority(strings.ToLower(strings.TrimSpace(s))); ok {
			out = append(out, p)
		}
	}
	return out
}

// dueRange returns the explicit due bounds, dropping an inverted range.
func dueRange(from, to *time.Time) (*time.Time, *time.Time) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil
	}
	return from, to
}

// BuildTaskFilter assembles a task filter for the query under the given
// scope. A nil scope is unrestricted.
func (b *FilterBuilder) BuildTaskFilter(q ListQuery, scope *task.ProjectScope) task.Filter {
	var statuses []task.Status
	for _, s := range q.Statuses {
		if st, ok := task.ParseStatus(strings.ToLower(strings.TrimSpace(s))); ok {
			statuses = append(statuses, st)
		}
	}

	f := task.Filter{
		ProjectID:  q.ProjectID,
		Scope:      scope,
		Statuses:   statuses,
		Priorities: b.priorities(q.Priorities),
		AssigneeID: q.AssigneeID,
		Category:   strings.TrimSpace(q.Category),
		Search:     strings.TrimSpace(q.Search),
	}
	f.DueFrom, f.DueTo = dueRange(q.DueFrom, q.DueTo)
	b.applyWindows(q, &f.OverdueAsOf, &f.DueFrom, &f.DueTo, &f.ExcludeTerminal)
	return f
}

// BuildIssueFilter assembles an issue filter for the query under the given
// scope.
func (b *FilterBuilder) BuildIssueFilter(q ListQuery, scope *task.ProjectScope) issue.Filter {
	var statuses []issue.Status
	for _, s := range q.Statuses {
		if st, ok := issue.ParseStatus(strings.ToLower(strings.TrimSpace(s))); ok {
			statuses = append(statuses, st)
		}
	}

	f := issue.Filter{
		ProjectID:  q.ProjectID,
		Scope:      scope,
		Statuses:   statuses,
		Priorities: b.priorities(q.Priorities),
		AssigneeID: q.AssigneeID,
		Search:     strings.TrimSpace(q.Search),
	}
	f.DueFrom, f.DueTo = dueRange(q.DueFrom, q.DueTo)
	b.applyWindows(q, &f.OverdueAsOf, &f.DueFrom, &f.DueTo, &f.ExcludeTerminal)
	return f
}

// applyWindows rewrites the due-range fields for the overdue and upcoming
// shortcuts. Overdue pins the as-of instant and takes precedence when both
// flags are set; upcoming spans now through the upcoming horizon and drops
// terminal items.
func (b *FilterBuilder) applyWindows(q ListQuery, overdueAsOf **time.Time, dueFrom, dueTo **time.Time, excludeTerminal *bool) {
	now := b.now().UTC()
	switch {
	case q.Overdue:
		*overdueAsOf = &now
		*dueFrom, *dueTo = nil, nil
	case q.Upcoming:
		horizon := now.Add(time.Duration(b.classifier.UpcomingHorizonDays) * 24 * time.Hour)
		*dueFrom = &now
		*dueTo = &horizon
		*excludeTerminal = true
	}
}
