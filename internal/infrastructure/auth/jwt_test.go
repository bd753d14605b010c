package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildmind/sitetrack/internal/config"
	"github.com/buildmind/sitetrack/internal/domain/user"
	"github.com/buildmind/sitetrack/pkg/errors"
)

func testManager(ttl time.Duration) *TokenManager {
	return NewTokenManager(config.AuthConfig{
		Secret:   "test-secret-test-secret-test-secret",
		Issuer:   "sitetrack-test",
		TokenTTL: ttl,
	})
}

func testUser(t *testing.T) *user.User {
	t.Helper()
	u, err := user.New("foreman@site.example", "Site Foreman")
	require.NoError(t, err)
	return u
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := testManager(time.Hour)
	u := testUser(t)

	token, err := m.Issue(u, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	p, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, u.Email, p.Email)
	assert.Equal(t, user.RoleUser, p.Role)
	assert.False(t, p.IsAdmin())
}

func TestTokenManager_AdminPrincipal(t *testing.T) {
	m := testManager(time.Hour)
	u := testUser(t)
	u.Role = user.RoleAdmin

	token, err := m.Issue(u, time.Now())
	require.NoError(t, err)

	p, err := m.Verify(token)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())
}

func TestTokenManager_Expired(t *testing.T) {
	m := testManager(time.Minute)
	u := testUser(t)

	token, err := m.Issue(u, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := testManager(time.Hour)
	verifier := NewTokenManager(config.AuthConfig{
		Secret:   "a-different-secret-entirely-here",
		Issuer:   "sitetrack-test",
		TokenTTL: time.Hour,
	})

	token, err := issuer.Issue(testUser(t), time.Now())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestTokenManager_WrongIssuer(t *testing.T) {
	issuer := NewTokenManager(config.AuthConfig{
		Secret:   "test-secret-test-secret-test-secret",
		Issuer:   "someone-else",
		TokenTTL: time.Hour,
	})

	token, err := issuer.Issue(testUser(t), time.Now())
	require.NoError(t, err)

	_, err = testManager(time.Hour).Verify(token)
	require.Error(t, err)
}

func TestTokenManager_Garbage(t *testing.T) {
	_, err := testManager(time.Hour).Verify("not.a.token")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
}
