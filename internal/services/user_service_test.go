package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msaimsawaid/music/internal/models"
	"github.com/msaimsawaid/music/internal/repo"
)

func newTestUserService(t *testing.T) (*UserService, *repo.MemoryUserRepo, *repo.MemoryAlbumRepo) {
	t.Helper()
	users := repo.NewMemoryUserRepo()
	albums := repo.NewMemoryAlbumRepo()
	return NewUserService(users, albums), users, albums
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	svc, users, _ := newTestUserService(t)
	ctx := context.Background()

	alice, err := users.Create(ctx, "alice", "a@x.com", "hash", models.RoleUser)
	require.NoError(t, err)
	_, err = users.Create(ctx, "bob", "b@x.com", "hash", models.RoleUser)
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, alice.ID, ProfilePatch{Email: strPtr("b@x.com")})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appStatus(t, err))

	updated, err := svc.UpdateProfile(ctx, alice.ID, ProfilePatch{Username: strPtr("alice2")})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "a@x.com", updated.Email)
}

func TestAdminCannotDeleteSelfViaAdminRoute(t *testing.T) {
	svc, users, _ := newTestUserService(t)
	ctx := context.Background()

	admin, err := users.Create(ctx, "admin", "admin@x.com", "hash", models.RoleAdmin)
	require.NoError(t, err)
	victim, err := users.Create(ctx, "bob", "b@x.com", "hash", models.RoleUser)
	require.NoError(t, err)

	err = svc.DeleteUser(ctx, admin.ID, admin.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appStatus(t, err))

	require.NoError(t, svc.DeleteUser(ctx, admin.ID, victim.ID))

	err = svc.DeleteUser(ctx, admin.ID, victim.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appStatus(t, err))

	// Self-service deletion still works for the admin's own account.
	require.NoError(t, svc.DeleteAccount(ctx, admin.ID))
	_, err = users.GetByID(ctx, admin.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestAdminStats(t *testing.T) {
	svc, users, albums := newTestUserService(t)
	ctx := context.Background()

	alice, err := users.Create(ctx, "alice", "a@x.com", "hash", models.RoleUser)
	require.NoError(t, err)
	_, err = users.Create(ctx, "admin", "admin@x.com", "hash", models.RoleAdmin)
	require.NoError(t, err)
	_, err = albums.Create(ctx, &models.Album{Title: "X", Artist: "Y", CreatedBy: alice.ID})
	require.NoError(t, err)

	stats, err := svc.AdminStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.TotalAlbums)
	assert.EqualValues(t, 2, stats.NewUsersToday)
	assert.EqualValues(t, 1, stats.NewAlbumsToday)
	assert.EqualValues(t, 1, stats.UsersByRole[models.RoleUser])
	assert.EqualValues(t, 1, stats.UsersByRole[models.RoleAdmin])
}
