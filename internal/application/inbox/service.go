// Package inbox is the read side of in-app notifications: the bell menu.
package inbox

import (
	"context"
	"time"

	"github.com/buildmind/sitetrack/internal/domain/notification"
	"github.com/buildmind/sitetrack/internal/infrastructure/auth"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Service exposes a recipient's notification feed.
type Service struct {
	notifications notification.Repository
	logger        logging.Logger
	now           func() time.Time
}

// NewService wires the service.
func NewService(notifications notification.Repository, logger logging.Logger) *Service {
	return &Service{
		notifications: notifications,
		logger:        logger.Named("inbox_service"),
		now:           time.Now,
	}
}

// List returns the caller's notifications, optionally only unread ones.
func (s *Service) List(ctx context.Context, p *auth.Principal, unreadOnly bool, page common.Pagination) ([]*notification.Notification, int64, error) {
	return s.notifications.ListForRecipient(ctx, p.ID, unreadOnly, page)
}

// CountUnread returns the caller's unread badge count.
func (s *Service) CountUnread(ctx context.Context, p *auth.Principal) (int64, error) {
	return s.notifications.CountUnread(ctx, p.ID)
}

// MarkRead marks one of the caller's notifications read.
func (s *Service) MarkRead(ctx context.Context, p *auth.Principal, id common.ID) error {
	return s.notifications.MarkRead(ctx, id, p.ID, s.now().UTC())
}

// MarkAllRead clears the caller's unread backlog.
func (s *Service) MarkAllRead(ctx context.Context, p *auth.Principal) error {
	return s.notifications.MarkAllRead(ctx, p.ID, s.now().UTC())
}
