package subscriptions

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

func TestSubscriptionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repositories()
	svc := NewSubscriptionService(repos, zap.NewNop())

	owner := models.NewUser("owner@example.com")
	require.NoError(t, repos.Users.Create(ctx, owner))
	creator := models.NewCreator(owner.ID, "Solo", "solo", "")
	require.NoError(t, repos.Creators.Create(ctx, creator))

	fan := models.NewUser("fan@example.com")
	memberID := "member-1"
	fan.GhostMemberID = &memberID
	require.NoError(t, repos.Users.Create(ctx, fan))

	first, created, err := svc.Subscribe(ctx, fan, creator.ID, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.ContentTypeAll, first.ContentType)
	assert.Equal(t, "member-1", first.GhostMemberID)

	second, created, err := svc.Subscribe(ctx, fan, creator.ID, "VIDEO")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.SubscriptionCount())

	active, err := svc.ListActive(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "VIDEO", active[0].ContentType)
	require.NotNil(t, active[0].Creator)
	assert.Equal(t, "solo", active[0].Creator.Slug)

	require.NoError(t, svc.Unsubscribe(ctx, fan.ID, creator.ID))
	active, err = svc.ListActive(ctx, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Equal(t, 1, store.SubscriptionCount())

	_, created, err = svc.Subscribe(ctx, fan, creator.ID, "")
	require.NoError(t, err)
	assert.False(t, created, "resubscribing reactivates the same row")
}

func TestSubscriptionErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewSubscriptionService(memory.NewStore().Repositories(), zap.NewNop())
	user := models.NewUser("fan@example.com")

	_, _, err := svc.Subscribe(ctx, user, uuid.New(), "")
	assert.ErrorIs(t, err, services.ErrCreatorNotFound)

	_, _, err = svc.Subscribe(ctx, user, uuid.Nil, "")
	assert.True(t, services.IsValidationError(err))

	err = svc.Unsubscribe(ctx, user.ID, uuid.New())
	assert.ErrorIs(t, err, services.ErrSubscriptionNotFound)
}
