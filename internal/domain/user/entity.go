// Package user defines the User entity and its repository contract.
package user

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Role is a user's global role. Project-level positions live in the project
// roster; this only distinguishes administrators from everyone else.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps a raw string to a Role, reporting whether it is known.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), true
	}
	return "", false
}

// User is an account that can log in, be assigned work, and receive
// notifications.
type User struct {
	ID           common.UserID `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Role         Role          `json:"role"`
	PasswordHash string        `json:"-"`

	// EmailNotifications gates the mail channel; in-app notifications are
	// always delivered.
	EmailNotifications bool `json:"email_notifications"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a User with validation.
func New(email, name string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.InvalidParam("a valid email is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.InvalidParam("name must not be empty")
	}

	now := time.Now().UTC()
	return &User{
		ID:                 common.UserID(common.NewID()),
		Email:              email,
		Name:               strings.TrimSpace(name),
		Role:               RoleUser,
		EmailNotifications: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// IsAdmin reports whether the user holds the global admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SetPassword hashes and stores the password.
func (u *User) SetPassword(plain string) error {
	if len(plain) < 8 {
		return errors.InvalidParam("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to hash password")
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the plain password matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// Repository is the persistence contract for users.
type Repository interface {
	Save(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id common.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context, page common.Pagination) ([]*User, int64, error)
}
