package accounts

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite_CreateAndLookup(t *testing.T) {
	repo := NewSQLiteRepository(repotest.NewSQLite(t))
	ctx := context.Background()

	acc, err := repo.Create(ctx, "alice@x.com", models.RoleUser)
	require.NoError(t, err)

	byID, err := repo.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, acc.Email, byID.Email)
	assert.Equal(t, models.RoleUser, byID.Role)
	assert.WithinDuration(t, acc.CreatedAt, byID.CreatedAt, 0)

	byEmail, err := repo.GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, byEmail.ID)
}

func TestSQLite_DuplicateEmailConflict(t *testing.T) {
	repo := NewSQLiteRepository(repotest.NewSQLite(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, "alice@x.com", models.RoleUser)
	require.NoError(t, err)

	_, err = repo.Create(ctx, "alice@x.com", models.RoleAdmin)
	assert.ErrorIs(t, err, common.ErrorConflict)
}

func TestSQLite_InvalidRoleRejectedByStore(t *testing.T) {
	repo := NewSQLiteRepository(repotest.NewSQLite(t))

	_, err := repo.Create(context.Background(), "alice@x.com", models.Role(7))
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorConflict)
}

func TestSQLite_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(repotest.NewSQLite(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByEmail(ctx, "nope@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.UpdateRole(ctx, "nope", models.RoleAdmin)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_UpdateRoleAndList(t *testing.T) {
	repo := NewSQLiteRepository(repotest.NewSQLite(t))
	ctx := context.Background()

	bob, err := repo.Create(ctx, "bob@x.com", models.RoleUser)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "alice@x.com", models.RoleUser)
	require.NoError(t, err)

	updated, err := repo.UpdateRole(ctx, bob.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice@x.com", list[0].Email)
	assert.Equal(t, "bob@x.com", list[1].Email)
	assert.Equal(t, models.RoleAdmin, list[1].Role)
}

func TestSQLite_ListEmpty(t *testing.T) {
	repo := NewSQLiteRepository(repotest.NewSQLite(t))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLite_UpdateEmail(t *testing.T) {
	repo := NewSQLiteRepository(repotest.NewSQLite(t))
	ctx := context.Background()

	alice, err := repo.Create(ctx, "alice@x.com", models.RoleUser)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "bob@x.com", models.RoleUser)
	require.NoError(t, err)

	updated, err := repo.UpdateEmail(ctx, alice.ID, "alice2@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice2@x.com", updated.Email)
	assert.Equal(t, alice.ID, updated.ID)

	_, err = repo.GetByEmail(ctx, "alice@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.UpdateEmail(ctx, alice.ID, "bob@x.com")
	assert.ErrorIs(t, err, common.ErrorConflict)

	_, err = repo.UpdateEmail(ctx, "nope", "carol@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
