package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories/memory"
	"github.com/upb/creatorhub/services"
	"go.uber.org/zap"
)

func TestFlatten(t *testing.T) {
	user := models.NewUser("a@example.com")
	managed := uuid.New()
	scoped := uuid.New()

	identity := Flatten(user, []models.RoleAssignment{
		{RoleName: models.RoleSubscriber},
		{RoleName: models.RoleCreator, CreatorID: &scoped},
		{RoleName: models.RoleCreatorAdmin, CreatorID: &managed},
	}, &scoped)

	assert.Equal(t, []string{models.RoleCreator, models.RoleCreatorAdmin, models.RoleSubscriber}, identity.RoleList())
	assert.Equal(t, []uuid.UUID{managed}, identity.ManagedList())
	assert.True(t, identity.Manages(managed))
	assert.False(t, identity.Manages(scoped))
	require.NotNil(t, identity.OwnedTenantID)
	assert.Equal(t, scoped, *identity.OwnedTenantID)
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repositories()
	resolver := NewResolver(repos, zap.NewNop())

	owner := models.NewUser("owner@example.com")
	require.NoError(t, repos.Users.Create(ctx, owner))
	creator := models.NewCreator(owner.ID, "Owner", "owner", "")
	require.NoError(t, repos.Creators.Create(ctx, creator))
	role, err := repos.Roles.GetByName(ctx, models.RoleCreator)
	require.NoError(t, err)
	_, err = repos.UserRoles.Assign(ctx, models.NewUserRole(owner.ID, role.ID, &creator.ID))
	require.NoError(t, err)

	t.Run("owner with scoped role", func(t *testing.T) {
		identity, err := resolver.Resolve(ctx, &models.Session{SubjectID: owner.ID})
		require.NoError(t, err)
		assert.Equal(t, owner.Email, identity.User.Email)
		assert.True(t, identity.HasRole(models.RoleCreator))
		require.NotNil(t, identity.OwnedTenantID)
		assert.Equal(t, creator.ID, *identity.OwnedTenantID)
		assert.Empty(t, identity.ManagedTenantIDs)
	})

	t.Run("user without roles", func(t *testing.T) {
		plain := models.NewUser("plain@example.com")
		require.NoError(t, repos.Users.Create(ctx, plain))

		identity, err := resolver.Resolve(ctx, &models.Session{SubjectID: plain.ID})
		require.NoError(t, err)
		assert.Empty(t, identity.RoleList())
		assert.Nil(t, identity.OwnedTenantID)
	})

	t.Run("deleted subject", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, &models.Session{SubjectID: uuid.New()})
		assert.True(t, services.IsNotFoundError(err))
	})

	t.Run("nil session", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, nil)
		assert.True(t, services.IsUnauthorizedError(err))
	})
}
