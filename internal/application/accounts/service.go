// Package accounts handles login and user administration.
package accounts

import (
	"context"
	"time"

	"github.com/buildmind/sitetrack/internal/domain/user"
	"github.com/buildmind/sitetrack/internal/infrastructure/auth"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// LoginResult carries the signed token and the account it represents.
type LoginResult struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// RegisterInput carries a new account's fields.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Service owns authentication and user management.
type Service struct {
	users  user.Repository
	tokens *auth.TokenManager
	logger logging.Logger
	now    func() time.Time
}

// NewService wires the service.
func NewService(users user.Repository, tokens *auth.TokenManager, logger logging.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger.Named("accounts_service"),
		now:    time.Now,
	}
}

// Login verifies credentials and issues a token. Bad email and bad password
// are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) || errors.IsCode(err, errors.CodeUserNotFound) {
			return nil, errors.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, errors.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Issue(u, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", logging.String("user_id", string(u.ID)))
	return &LoginResult{Token: token, User: u}, nil
}

// Register creates a new account. Only admins may create accounts.
func (s *Service) Register(ctx context.Context, p *auth.Principal, in RegisterInput) (*user.User, error) {
	if !p.IsAdmin() {
		return nil, errors.Forbidden("only admins may create accounts")
	}

	u, err := user.New(in.Email, in.Name)
	if err != nil {
		return nil, err
	}
	if err := u.SetPassword(in.Password); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Get loads one account. Non-admins may only load themselves.
func (s *Service) Get(ctx context.Context, p *auth.Principal, id common.UserID) (*user.User, error) {
	if !p.IsAdmin() && p.ID != id {
		return nil, errors.Forbidden("cannot view other accounts")
	}
	return s.users.FindByID(ctx, id)
}

// List returns all accounts; the directory is visible to every signed-in
// user so assignee pickers work.
func (s *Service) List(ctx context.Context, page common.Pagination) ([]*user.User, int64, error) {
	return s.users.List(ctx, page)
}

// SetEmailNotifications flips the caller's mail opt-out.
func (s *Service) SetEmailNotifications(ctx context.Context, p *auth.Principal, enabled bool) (*user.User, error) {
	u, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	u.EmailNotifications = enabled
	u.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword verifies the current password and stores the new one.
func (s *Service) ChangePassword(ctx context.Context, p *auth.Principal, current, next string) error {
	u, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if !u.CheckPassword(current) {
		return errors.Unauthorized("current password is incorrect")
	}
	if err := u.SetPassword(next); err != nil {
		return err
	}
	u.UpdatedAt = s.now().UTC()
	return s.users.Update(ctx, u)
}
