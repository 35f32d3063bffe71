package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// User tests
func TestNewUser(t *testing.T) {
	user := NewUser("test@example.com")

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.False(t, user.IsCreator)
	assert.False(t, user.IsLinked())
	assert.Empty(t, user.DisplayName())
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestUser_IsLinked(t *testing.T) {
	empty := ""
	linked := "member-1"

	tests := []struct {
		name     string
		memberID *string
		want     bool
	}{
		{"never logged in", nil, false},
		{"empty member id", &empty, false},
		{"linked", &linked, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{GhostMemberID: tt.memberID}
			assert.Equal(t, tt.want, user.IsLinked())
		})
	}
}

func TestUser_TableName(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
}

// Creator tests
func TestNewCreator(t *testing.T) {
	userID := uuid.New()

	t.Run("explicit type", func(t *testing.T) {
		creator := NewCreator(userID, "Grace", "grace", CreatorTypeChurch)
		assert.NotEqual(t, uuid.Nil, creator.ID)
		assert.Equal(t, userID, creator.UserID)
		assert.Equal(t, "grace", creator.Slug)
		assert.Equal(t, CreatorTypeChurch, creator.Type)
		assert.False(t, creator.CreatedAt.IsZero())
	})

	t.Run("defaults to individual", func(t *testing.T) {
		creator := NewCreator(userID, "Solo", "solo", "")
		assert.Equal(t, CreatorTypeIndividual, creator.Type)
	})
}

func TestCreatorType_IsValid(t *testing.T) {
	assert.True(t, CreatorTypeIndividual.IsValid())
	assert.True(t, CreatorTypeChurch.IsValid())
	assert.False(t, CreatorType("BAND").IsValid())
	assert.False(t, CreatorType("").IsValid())
}

func TestCreator_JSONOmitsUnsetFields(t *testing.T) {
	creator := NewCreator(uuid.New(), "Solo", "solo", CreatorTypeIndividual)

	data, err := json.Marshal(creator)
	require.NoError(t, err)

	assert.NotContains(t, string(data), `"bio"`)
	assert.NotContains(t, string(data), `"settings"`)
	assert.Contains(t, string(data), `"subscriber_count":0`)
}

func TestNewGhostAuthorMapping(t *testing.T) {
	creatorID, userID := uuid.New(), uuid.New()
	mapping := NewGhostAuthorMapping("author-1", creatorID, userID)

	assert.NotEqual(t, uuid.Nil, mapping.ID)
	assert.Equal(t, "author-1", mapping.GhostAuthorID)
	assert.Equal(t, creatorID, mapping.CreatorID)
	assert.Equal(t, userID, mapping.UserID)
	assert.Equal(t, "ghost_author_mappings", GhostAuthorMapping{}.TableName())
}

// Subscription tests
func TestNewSubscription(t *testing.T) {
	userID, creatorID := uuid.New(), uuid.New()

	t.Run("defaults to all content", func(t *testing.T) {
		sub := NewSubscription(userID, creatorID, "member-1", "")
		assert.Equal(t, ContentTypeAll, sub.ContentType)
		assert.Equal(t, SubscriptionActive, sub.Status)
		assert.True(t, sub.IsActive())
	})

	t.Run("keeps content type", func(t *testing.T) {
		sub := NewSubscription(userID, creatorID, "member-1", "VIDEO")
		assert.Equal(t, "VIDEO", sub.ContentType)
	})
}

func TestSubscription_Deactivate(t *testing.T) {
	sub := NewSubscription(uuid.New(), uuid.New(), "", "")
	sub.UpdatedAt = time.Now().Add(-time.Hour)
	before := sub.UpdatedAt

	sub.Deactivate()

	assert.Equal(t, SubscriptionInactive, sub.Status)
	assert.False(t, sub.IsActive())
	assert.True(t, sub.UpdatedAt.After(before))
}

// Role tests
func TestRoleAssignment_IsGlobal(t *testing.T) {
	creatorID := uuid.New()

	assert.True(t, RoleAssignment{RoleName: RoleSubscriber}.IsGlobal())
	assert.False(t, RoleAssignment{RoleName: RoleCreatorAdmin, CreatorID: &creatorID}.IsGlobal())
}

func TestNewUserRole(t *testing.T) {
	userID, roleID, creatorID := uuid.New(), uuid.New(), uuid.New()

	scoped := NewUserRole(userID, roleID, &creatorID)
	require.NotNil(t, scoped.CreatorID)
	assert.Equal(t, creatorID, *scoped.CreatorID)

	global := NewUserRole(userID, roleID, nil)
	assert.Nil(t, global.CreatorID)
	assert.NotEqual(t, scoped.ID, global.ID)
}

// Identity tests
func testIdentity() (*Identity, uuid.UUID, uuid.UUID) {
	owned, managed := uuid.New(), uuid.New()
	user := NewUser("owner@example.com")
	user.IsCreator = true
	return &Identity{
		User: user,
		Assignments: []RoleAssignment{
			{RoleName: RoleCreator, CreatorID: &owned},
			{RoleName: RoleCreatorAdmin, CreatorID: &managed},
		},
		RoleNames:        map[string]struct{}{RoleCreatorAdmin: {}, RoleCreator: {}},
		OwnedTenantID:    &owned,
		ManagedTenantIDs: map[uuid.UUID]struct{}{managed: {}},
	}, owned, managed
}

func TestIdentity_Roles(t *testing.T) {
	identity, owned, managed := testIdentity()

	assert.True(t, identity.HasRole(RoleCreator))
	assert.True(t, identity.HasRole(RoleCreatorAdmin))
	assert.False(t, identity.HasRole(RoleSubscriber))
	assert.Equal(t, []string{RoleCreator, RoleCreatorAdmin}, identity.RoleList())

	assert.True(t, identity.Manages(managed))
	assert.False(t, identity.Manages(owned))
	assert.Equal(t, []uuid.UUID{managed}, identity.ManagedList())
}

func TestIdentity_EmptyListsAreNotNil(t *testing.T) {
	identity := &Identity{User: NewUser("new@example.com")}

	assert.NotNil(t, identity.RoleList())
	assert.NotNil(t, identity.ManagedList())
	assert.Empty(t, identity.RoleList())
}

func TestNewSessionUser(t *testing.T) {
	identity, owned, managed := testIdentity()

	view := NewSessionUser(identity)

	assert.Equal(t, identity.ID(), view.ID)
	assert.Equal(t, "owner@example.com", view.Email)
	assert.True(t, view.IsCreator)
	require.NotNil(t, view.CreatorID)
	assert.Equal(t, owned, *view.CreatorID)
	assert.Equal(t, []uuid.UUID{managed}, view.ManagedCreatorIDs)

	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"isCreator":true`)
	assert.Contains(t, string(data), `"managedCreatorIds"`)
}

func TestSession_TTL(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	session := Session{IssuedAt: issued, ExpiresAt: issued.Add(2 * time.Hour)}
	assert.Equal(t, 2*time.Hour, session.TTL())
}
