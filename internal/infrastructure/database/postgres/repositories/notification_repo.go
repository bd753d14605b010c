package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildmind/sitetrack/internal/domain/notification"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

const notificationColumns = `n.id, n.type, n.title, n.message, n.priority,
	n.recipient_id, n.related_id, n.related_kind, n.data, n.created_at, n.read_at`

// NotificationRepository is the pgx-backed notification.Repository. The data
// column is JSONB; pgx maps common.Metadata to it directly.
type NotificationRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewNotificationRepository constructs a ready-to-use NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool, logger logging.Logger) *NotificationRepository {
	return &NotificationRepository{pool: pool, logger: logger.Named("notification_repo")}
}

func (r *NotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (
			id, type, title, message, priority, recipient_id,
			related_id, related_kind, data, created_at, read_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		n.ID, n.Type, n.Title, n.Message, n.Priority, n.RecipientID,
		n.RelatedID, n.RelatedKind, n.Data, n.CreatedAt, n.ReadAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to insert notification")
	}
	return nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id common.ID) (*notification.Notification, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications n WHERE n.id = $1`, id)
	n, err := scanNotification(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.CodeNotificationNotFound, "notification not found").WithDetail("id=" + string(id))
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query notification")
	}
	return n, nil
}

func (r *NotificationRepository) ListForRecipient(ctx context.Context, recipient common.UserID, unreadOnly bool, page common.Pagination) ([]*notification.Notification, int64, error) {
	page.Normalize()

	cond := ` WHERE n.recipient_id = $1`
	if unreadOnly {
		cond += ` AND n.read_at IS NULL`
	}

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications n`+cond, recipient).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to count notifications")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications n`+cond+`
		ORDER BY n.created_at DESC LIMIT $2 OFFSET $3`,
		recipient, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to query notifications")
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan notification row")
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "notification row iteration failed")
	}
	return out, total, nil
}

// MarkRead is recipient-scoped so one user cannot mark another user's
// notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, id common.ID, recipient common.UserID, readAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read_at = $3
		WHERE id = $1 AND recipient_id = $2 AND read_at IS NULL`,
		id, recipient, readAt)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to mark notification read")
	}
	if tag.RowsAffected() == 0 {
		// Already read is fine; missing or foreign is not.
		var exists bool
		if err := r.pool.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM notifications WHERE id = $1 AND recipient_id = $2
			)`, id, recipient).Scan(&exists); err != nil {
			return errors.Wrap(err, errors.CodeDatabaseError, "failed to check notification")
		}
		if !exists {
			return errors.New(errors.CodeNotificationNotFound, "notification not found").WithDetail("id=" + string(id))
		}
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipient common.UserID, readAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read_at = $2
		WHERE recipient_id = $1 AND read_at IS NULL`,
		recipient, readAt)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to mark notifications read")
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipient common.UserID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1 AND read_at IS NULL`, recipient).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to count unread notifications")
	}
	return count, nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(
		&n.ID, &n.Type, &n.Title, &n.Message, &n.Priority,
		&n.RecipientID, &n.RelatedID, &n.RelatedKind, &n.Data, &n.CreatedAt, &n.ReadAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
