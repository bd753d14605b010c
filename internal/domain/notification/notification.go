// Package notification defines the notification record, the delivery channel
// contract, and the dispatch ledger used to suppress repeat deliveries.
package notification

import (
	"context"
	"time"

	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Type categorizes what a notification is about.
type Type string

const (
	TypeTaskOverdue      Type = "task_overdue"
	TypeTaskUpcoming     Type = "task_upcoming"
	TypeIssueOverdue     Type = "issue_overdue"
	TypeIssueWarning     Type = "issue_warning"
	TypeCalendarReminder Type = "calendar_reminder"
	TypeAssignment       Type = "assignment"
)

// RelatedKind names the entity a notification points back to.
type RelatedKind string

const (
	RelatedTask  RelatedKind = "task"
	RelatedIssue RelatedKind = "issue"
	RelatedEvent RelatedKind = "event"
)

// Notification is the structured payload handed to delivery channels and, for
// the in-app channel, persisted for later reads.
type Notification struct {
	ID          common.ID         `json:"id"`
	Type        Type              `json:"type"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Priority    schedule.Urgency  `json:"priority"`
	RecipientID common.UserID     `json:"recipient_id"`
	RelatedID   common.ID         `json:"related_id"`
	RelatedKind RelatedKind       `json:"related_kind"`
	Data        common.Metadata   `json:"data,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
}

// New builds a notification record with validation.
func New(typ Type, recipient common.UserID, title, message string) (*Notification, error) {
	if recipient == "" {
		return nil, errors.InvalidParam("recipient is required")
	}
	if title == "" {
		return nil, errors.InvalidParam("title is required")
	}
	return &Notification{
		ID:          common.NewID(),
		Type:        typ,
		Title:       title,
		Message:     message,
		Priority:    schedule.UrgencyNormal,
		RecipientID: recipient,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// MarkRead stamps the read time; marking twice is a no-op.
func (n *Notification) MarkRead(now time.Time) {
	if n.ReadAt == nil {
		n.ReadAt = &now
	}
}

// Channel delivers a notification to a recipient by some transport (in-app
// store, email). Delivery is fire-and-forget from the dispatcher's point of
// view: a channel failure is logged and must never abort a sweep.
type Channel interface {
	// Name identifies the channel in logs and metrics.
	Name() string

	// Deliver sends the notification. Implementations decide internally
	// whether the recipient has opted out (and return nil in that case).
	Deliver(ctx context.Context, n *Notification) error
}

// Repository is the persistence contract for in-app notifications.
type Repository interface {
	Save(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id common.ID) (*Notification, error)
	ListForRecipient(ctx context.Context, recipient common.UserID, unreadOnly bool, page common.Pagination) ([]*Notification, int64, error)
	MarkRead(ctx context.Context, id common.ID, recipient common.UserID, readAt time.Time) error
	MarkAllRead(ctx context.Context, recipient common.UserID, readAt time.Time) error
	CountUnread(ctx context.Context, recipient common.UserID) (int64, error)
}
