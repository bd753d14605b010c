package schedule

import (
	"math"
	"time"
)

// Urgency is the derived attention bucket of a trackable item.
type Urgency string

const (
	// UrgencyNormal: no deadline pressure, or no deadline at all.
	UrgencyNormal Urgency = "normal"

	// UrgencyMedium: due within the warning horizon but more than a day out.
	UrgencyMedium Urgency = "medium"

	// UrgencyHigh: due within one day (inclusive of "due right now").
	UrgencyHigh Urgency = "high"

	// UrgencyCritical: past due and not terminal.
	UrgencyCritical Urgency = "critical"
)

// Classification is the derived, non-persisted urgency annotation for a
// trackable item at a given instant. It is recomputed on every read and has
// no identity of its own.
type Classification struct {
	Urgency Urgency `json:"urgency"`

	// DaysUntilDue is ceil((due-now)/24h); nil when the item has no due date
	// or its status is terminal. Zero means due later today.
	DaysUntilDue *int `json:"days_until_due,omitempty"`

	// DaysOverdue is ceil((now-due)/24h) when overdue, zero otherwise.
	DaysOverdue int `json:"days_overdue,omitempty"`

	// IsOverdue is true when the due date has strictly passed and the item is
	// not terminal. Mutually exclusive with IsWarning.
	IsOverdue bool `json:"is_overdue"`

	// IsWarning is true when the item is due within the warning horizon,
	// boundary inclusive: an item due exactly now is warning, not overdue.
	IsWarning bool `json:"is_warning"`
}

// Classifier holds the horizon configuration for deadline classification.
// The zero value is not usable; construct with NewClassifier.
type Classifier struct {
	// WarningHorizonDays is the number of days before a due date within which
	// a non-overdue item is flagged as warning.
	WarningHorizonDays int

	// UrgentHorizonDays is the sub-bucket within the warning horizon that
	// escalates the urgency from medium to high.
	UrgentHorizonDays int

	// UpcomingHorizonDays is the looser horizon used only by list filtering
	// ("upcoming" flag); it never sets IsWarning.
	UpcomingHorizonDays int
}

// Default horizons, matching the per-surface values the product has always
// used: 3-day warning window, 1-day urgent sub-bucket, 7-day upcoming list.
const (
	DefaultWarningHorizonDays  = 3
	DefaultUrgentHorizonDays   = 1
	DefaultUpcomingHorizonDays = 7
)

// NewClassifier returns a Classifier with the default horizons.
func NewClassifier() Classifier {
	return Classifier{
		WarningHorizonDays:  DefaultWarningHorizonDays,
		UrgentHorizonDays:   DefaultUrgentHorizonDays,
		UpcomingHorizonDays: DefaultUpcomingHorizonDays,
	}
}

// ceilDays converts a duration to whole days, rounding toward the future
// boundary: one hour until due reports as one day remaining.
func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}

// Classify computes the Classification of item at the instant now.
//
// Rules:
//   - Terminal status or absent due date: normal, nil days, no flags.
//   - due < now (strictly): overdue, critical.
//   - 0 <= daysUntilDue <= WarningHorizonDays: warning; high urgency when the
//     item is within the urgent horizon, medium otherwise.
//   - Otherwise: normal.
//
// Classify never fails; it is a pure function and safe for concurrent use.
func (c Classifier) Classify(item Trackable, now time.Time) Classification {
	due := item.DueAt()
	if item.IsTerminal() || due == nil {
		return Classification{Urgency: UrgencyNormal}
	}

	if due.Before(now) {
		return Classification{
			Urgency:     UrgencyCritical,
			DaysOverdue: ceilDays(now.Sub(*due)),
			IsOverdue:   true,
		}
	}

	days := ceilDays(due.Sub(now))
	result := Classification{Urgency: UrgencyNormal, DaysUntilDue: &days}
	if days <= c.WarningHorizonDays {
		result.IsWarning = true
		if days <= c.UrgentHorizonDays {
			result.Urgency = UrgencyHigh
		} else {
			result.Urgency = UrgencyMedium
		}
	}
	return result
}

// IsOverdue reports whether item is past due at now. Shorthand for the
// dispatcher and filter paths that need only the flag.
func (c Classifier) IsOverdue(item Trackable, now time.Time) bool {
	due := item.DueAt()
	return !item.IsTerminal() && due != nil && due.Before(now)
}

// WithinUpcoming reports whether item falls in the loose upcoming window
// [now, now+UpcomingHorizonDays]. Used only for list filtering; it does not
// imply a warning classification.
func (c Classifier) WithinUpcoming(item Trackable, now time.Time) bool {
	due := item.DueAt()
	if item.IsTerminal() || due == nil || due.Before(now) {
		return false
	}
	return ceilDays(due.Sub(now)) <= c.UpcomingHorizonDays
}
