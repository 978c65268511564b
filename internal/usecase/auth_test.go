package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/infrastructure/storage"
	"Helpdesk/internal/ports"
)

func newAuth(t *testing.T, users ports.UserRepository, now func() time.Time) *AuthService {
	t.Helper()
	svc, err := NewAuthService(AuthDeps{Users: users, Secret: "test-secret", TokenTTL: time.Hour, Now: now})
	require.NoError(t, err)
	return svc
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewAuthService(AuthDeps{Secret: " "})
	require.Error(t, err)
}

func TestRegisterLoginVerify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := storage.NewMemoryRepositories()
	svc := newAuth(t, repos.Users, nil)

	session, err := svc.Register(ctx, "Ada Lovelace", " Ada@Example.com ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.Equal(t, domain.RoleUser, session.User.Role)
	assert.Equal(t, AvatarURL("Ada Lovelace"), session.User.AvatarURL)
	assert.NotEqual(t, "s3cret", session.User.PasswordHash)

	login, err := svc.Login(ctx, "ADA@example.com", "s3cret")
	require.NoError(t, err)

	caller, err := svc.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.Principal{UserID: session.User.ID, Email: "ada@example.com", Role: domain.RoleUser}, caller)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := storage.NewMemoryRepositories()
	svc := newAuth(t, repos.Users, nil)

	_, err := svc.Register(ctx, "A", "a@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "B", "A@EXAMPLE.COM", "pw")
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "User already exists")

	_, err = svc.Register(ctx, "", "c@example.com", "pw")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Register(ctx, "C", "not-an-email", "pw")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := storage.NewMemoryRepositories()
	svc := newAuth(t, repos.Users, nil)

	_, err := svc.Register(ctx, "A", "a@example.com", "right")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody@example.com", "right")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Invalid credentials")

	_, err = svc.Login(ctx, "", "right")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	t.Parallel()
	repos := storage.NewMemoryRepositories()
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	svc := newAuth(t, repos.Users, func() time.Time { return now })

	token, err := svc.IssueToken(domain.User{ID: 7, Email: "m@example.com", Role: domain.RoleManager})
	require.NoError(t, err)

	caller, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, caller.Role)

	now = issued.Add(2 * time.Hour)
	_, err = svc.Verify(token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Verify("garbage")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	other, err := NewAuthService(AuthDeps{Users: repos.Users, Secret: "other", Now: func() time.Time { return issued }})
	require.NoError(t, err)
	forged, err := other.IssueToken(domain.User{ID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)
	now = issued
	_, err = svc.Verify(forged)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "role": "admin"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(unsigned)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := storage.NewMemoryRepositories()
	svc := newAuth(t, repos.Users, nil)

	require.NoError(t, svc.EnsureAdmin(ctx, "Root", "root@example.com", "pw"))
	require.NoError(t, svc.EnsureAdmin(ctx, "Root", "root@example.com", "other"))

	users, err := repos.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)

	_, err = svc.Login(ctx, "root@example.com", "pw")
	require.NoError(t, err)
}
