// Package auth issues and verifies the HS256 access tokens that guard the
// REST surface.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/buildmind/sitetrack/internal/config"
	"github.com/buildmind/sitetrack/internal/domain/user"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Principal is the authenticated identity carried through request contexts.
type Principal struct {
	ID    common.UserID
	Email string
	Role  user.Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == user.RoleAdmin
}

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies access tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager builds a manager from config.
func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
	}
}

// Issue signs a token for the user, valid for the configured TTL.
func (m *TokenManager) Issue(u *user.User, now time.Time) (string, error) {
	c := claims{
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(u.ID),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// Verify parses and validates the token, returning the embedded principal.
func (m *TokenManager) Verify(tokenString string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New(errors.CodeUnauthorized, "unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnauthorized, "invalid token")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, errors.New(errors.CodeUnauthorized, "invalid token claims")
	}

	role, ok := user.ParseRole(c.Role)
	if !ok {
		return nil, errors.New(errors.CodeUnauthorized, "unknown role in token")
	}
	return &Principal{
		ID:    common.UserID(c.Subject),
		Email: c.Email,
		Role:  role,
	}, nil
}
