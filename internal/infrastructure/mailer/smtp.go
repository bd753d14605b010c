package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/buildmind/sitetrack/internal/config"
	"github.com/buildmind/sitetrack/internal/domain/notification"
	"github.com/buildmind/sitetrack/internal/domain/user"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
)

// sendFunc matches net/smtp.SendMail, injectable for tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailChannel sends notification mail over SMTP. Recipients who disabled
// email notifications are skipped silently.
type EmailChannel struct {
	cfg    config.SMTPConfig
	users  user.Repository
	send   sendFunc
	logger logging.Logger
}

// NewEmailChannel wires the channel onto the user store for opt-out lookups.
func NewEmailChannel(cfg config.SMTPConfig, users user.Repository, logger logging.Logger) *EmailChannel {
	return &EmailChannel{
		cfg:    cfg,
		users:  users,
		send:   smtp.SendMail,
		logger: logger.Named("email_channel"),
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Deliver(ctx context.Context, n *notification.Notification) error {
	u, err := c.users.FindByID(ctx, n.RecipientID)
	if err != nil {
		return errors.Wrap(err, errors.CodeExternalService, "email recipient lookup failed")
	}
	if !u.EmailNotifications {
		c.logger.Debug("email skipped, recipient opted out",
			logging.String("recipient", string(n.RecipientID)))
		return nil
	}

	msg := buildMessage(c.cfg.From, u.Email, n)
	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)

	var auth smtp.Auth
	if c.cfg.User != "" {
		auth = smtp.PlainAuth("", c.cfg.User, c.cfg.Password, c.cfg.Host)
	}
	if err := c.send(addr, auth, c.cfg.From, []string{u.Email}, msg); err != nil {
		return errors.Wrap(err, errors.CodeExternalService, "smtp send failed")
	}
	return nil
}

func buildMessage(from, to string, n *notification.Notification) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: [SiteTrack] %s\r\n", n.Title)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(n.Message)
	b.WriteString("\r\n")
	return []byte(b.String())
}
