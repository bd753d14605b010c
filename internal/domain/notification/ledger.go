package notification

import (
	"context"
	"time"

	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// LedgerEntry records the most urgent classification already notified for a
// given (item, notification type, recipient) triple. The dispatcher consults
// it so an item sitting unchanged in the overdue bucket is not re-notified on
// every sweep tick; only an upward urgency transition triggers a new delivery.
type LedgerEntry struct {
	RelatedID   common.ID        `json:"related_id"`
	Type        Type             `json:"type"`
	RecipientID common.UserID    `json:"recipient_id"`
	Urgency     schedule.Urgency `json:"urgency"`
	NotifiedAt  time.Time        `json:"notified_at"`
}

// urgencyOrder ranks urgencies for transition comparison.
var urgencyOrder = map[schedule.Urgency]int{
	schedule.UrgencyNormal:   0,
	schedule.UrgencyMedium:   1,
	schedule.UrgencyHigh:     2,
	schedule.UrgencyCritical: 3,
}

// IsEscalation reports whether moving from the recorded urgency to next is an
// upward transition that warrants a fresh notification.
func (e *LedgerEntry) IsEscalation(next schedule.Urgency) bool {
	return urgencyOrder[next] > urgencyOrder[e.Urgency]
}

// Ledger is the persistence contract for dispatch de-duplication state.
// A nil entry from Get means the triple has never been notified.
type Ledger interface {
	Get(ctx context.Context, relatedID common.ID, typ Type, recipient common.UserID) (*LedgerEntry, error)
	Put(ctx context.Context, entry *LedgerEntry) error

	// Clear removes ledger state for an item, called when the item's due date
	// changes or it leaves a terminal status, so future transitions notify
	// again from a clean slate.
	Clear(ctx context.Context, relatedID common.ID) error
}
