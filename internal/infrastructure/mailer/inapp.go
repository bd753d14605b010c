// Package mailer holds the delivery channels the dispatcher fans out to: the
// in-app store and outgoing email.
package mailer

import (
	"context"

	"github.com/buildmind/sitetrack/internal/domain/notification"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
)

// InAppChannel persists notifications so they show up in the bell menu.
type InAppChannel struct {
	repo   notification.Repository
	logger logging.Logger
}

// NewInAppChannel wires the channel onto the notification store.
func NewInAppChannel(repo notification.Repository, logger logging.Logger) *InAppChannel {
	return &InAppChannel{repo: repo, logger: logger.Named("inapp_channel")}
}

func (c *InAppChannel) Name() string { return "in_app" }

func (c *InAppChannel) Deliver(ctx context.Context, n *notification.Notification) error {
	return c.repo.Save(ctx, n)
}
