package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

type memoryUserRepo struct {
	users     map[string]*models.User
	lastLogin map[int64]time.Time
	findErr   error
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]*models.User{}, lastLogin: map[int64]time.Time{}}
}

func (m *memoryUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *memoryUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = int64(len(m.users) + 1)
	m.users[user.Email] = user
	return nil
}

func (m *memoryUserRepo) UpdateLastLogin(_ context.Context, id int64, ts time.Time) error {
	m.lastLogin[id] = ts
	return nil
}

func newAuthFixture(t *testing.T, now time.Time) (*AuthService, *memoryUserRepo) {
	t.Helper()
	repo := newMemoryUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["admin@iut.fr"] = &models.User{ID: 7, Email: "admin@iut.fr", PasswordHash: string(hash), FullName: "Admin", Role: models.RoleAdmin, Active: true}
	repo.users["old@iut.fr"] = &models.User{ID: 8, Email: "old@iut.fr", PasswordHash: string(hash), Role: models.RoleViewer}

	svc := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "test-secret", AccessTokenExpiry: time.Hour, Issuer: "iut-charges-api"})
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestAuthLoginIssuesValidToken(t *testing.T) {
	now := time.Date(2024, 10, 7, 8, 0, 0, 0, time.UTC)
	svc, repo := newAuthFixture(t, now)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@iut.fr", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.Equal(t, now, repo.lastLogin[7])

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestAuthLoginFailures(t *testing.T) {
	svc, _ := newAuthFixture(t, time.Now())
	ctx := context.Background()

	_, err := svc.Login(ctx, models.LoginRequest{Email: "admin@iut.fr", Password: "wrong"})
	requireCode(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@iut.fr", Password: "secret123"})
	requireCode(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "old@iut.fr", Password: "secret123"})
	requireCode(t, err, appErrors.ErrInactiveAccount)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "not-an-email", Password: "x"})
	requireCode(t, err, appErrors.ErrValidation)
}

func TestAuthValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	issued := time.Date(2024, 10, 7, 8, 0, 0, 0, time.UTC)
	svc, _ := newAuthFixture(t, issued)
	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@iut.fr", Password: "secret123"})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(resp.AccessToken)
	requireCode(t, err, appErrors.ErrUnauthorized)

	svc.now = func() time.Time { return issued }
	other := NewAuthService(newMemoryUserRepo(), nil, nil, AuthConfig{AccessTokenSecret: "another-secret"})
	other.now = svc.now
	_, err = other.ValidateToken(resp.AccessToken)
	requireCode(t, err, appErrors.ErrUnauthorized)
}

func TestAuthEnsureAdminIsIdempotent(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "s"})
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "root@iut.fr", "changeme", "Root")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdmin, repo.users["root@iut.fr"].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users["root@iut.fr"].PasswordHash), []byte("changeme")))

	created, err = svc.EnsureAdmin(ctx, "root@iut.fr", "other", "Root")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.EnsureAdmin(ctx, "", "x", "")
	assert.Error(t, err)
}
