package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildmind/sitetrack/internal/domain/user"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

const userColumns = `u.id, u.email, u.name, u.role, u.password_hash,
	u.email_notifications, u.created_at, u.updated_at`

// UserRepository is the pgx-backed user.Repository.
type UserRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewUserRepository constructs a ready-to-use UserRepository.
func NewUserRepository(pool *pgxpool.Pool, logger logging.Logger) *UserRepository {
	return &UserRepository{pool: pool, logger: logger.Named("user_repo")}
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (
			id, email, name, role, password_hash, email_notifications,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Email, u.Name, u.Role, u.PasswordHash, u.EmailNotifications,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.New(errors.CodeConflict, "email already registered").WithDetail("email=" + u.Email)
		}
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to insert user")
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id common.UserID) (*user.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
	return r.scanOne(row, "id="+string(id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email)
	return r.scanOne(row, "email="+email)
}

func (r *UserRepository) scanOne(row pgx.Row, detail string) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash,
		&u.EmailNotifications, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.CodeUserNotFound, "user not found").WithDetail(detail)
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query user")
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET
			email = $2, name = $3, role = $4, password_hash = $5,
			email_notifications = $6, updated_at = $7
		WHERE id = $1`,
		u.ID, u.Email, u.Name, u.Role, u.PasswordHash,
		u.EmailNotifications, u.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to update user")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.CodeUserNotFound, "user not found").WithDetail("id=" + string(u.ID))
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, page common.Pagination) ([]*user.User, int64, error) {
	page.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to count users")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users u
		ORDER BY u.name ASC LIMIT $1 OFFSET $2`,
		page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to query users")
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash,
			&u.EmailNotifications, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan user row")
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "user row iteration failed")
	}
	return users, total, nil
}
