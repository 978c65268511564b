package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/infrastructure/storage"
)

func TestAvatarURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://ui-avatars.com/api/?name=Ada+Lovelace&background=random", AvatarURL("Ada Lovelace"))
}

func TestUserServiceLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := storage.NewMemoryRepositories()
	svc := NewUserService(repos.Users, nil)

	plain, err := svc.Create(ctx, NewUserInput{Name: "Pat", Email: "pat@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, plain.Role)

	mgr, err := svc.Create(ctx, NewUserInput{Name: "Mia", Email: "mia@example.com", Password: "pw", Role: domain.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, mgr.Role)

	_, err = svc.Create(ctx, NewUserInput{Name: "X", Email: "x@example.com", Password: "pw", Role: "owner"})
	require.ErrorIs(t, err, domain.ErrValidation)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, mgr.ID, users[0].ID)

	name := "Patricia"
	admin := domain.RoleAdmin
	updated, err := svc.Update(ctx, plain.ID, domain.UserPatch{Name: &name, Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, "Patricia", updated.Name)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.Equal(t, "pat@example.com", updated.Email)

	email := "MIA@example.com"
	_, err = svc.Update(ctx, plain.ID, domain.UserPatch{Email: &email})
	require.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, svc.Delete(ctx, plain.ID))
	require.ErrorIs(t, svc.Delete(ctx, plain.ID), domain.ErrNotFound)
}

func TestUserServiceUpdateValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := storage.NewMemoryRepositories()
	svc := NewUserService(repos.Users, nil)

	blank := "  "
	_, err := svc.Update(ctx, 1, domain.UserPatch{Name: &blank})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "No fields to update")

	bad := domain.Role("root")
	_, err = svc.Update(ctx, 1, domain.UserPatch{Role: &bad})
	require.ErrorIs(t, err, domain.ErrValidation)

	name := "Ghost"
	_, err = svc.Update(ctx, 1, domain.UserPatch{Name: &name})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
