package accounts

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/creatorhub/ghost"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
	"github.com/upb/creatorhub/repositories/memory"
	"github.com/upb/creatorhub/services"
	"github.com/upb/creatorhub/services/identity"
	"go.uber.org/zap"
)

type MockMembers struct {
	mock.Mock
}

func (m *MockMembers) CreateSession(ctx context.Context, email, password string) (*ghost.Member, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*ghost.Member), args.String(1), args.Error(2)
}

func newService(t *testing.T) (*AccountService, *MockMembers, *repositories.Repositories) {
	t.Helper()
	repos := memory.NewStore().Repositories()
	members := new(MockMembers)
	resolver := identity.NewResolver(repos, zap.NewNop())
	return NewAccountService(repos.Users, members, resolver, zap.NewNop()), members, repos
}

func TestLogin_CreatesNewUser(t *testing.T) {
	svc, members, repos := newService(t)
	ctx := context.Background()
	members.On("CreateSession", ctx, "new@example.com", "secret").
		Return(&ghost.Member{ID: "member-1", Email: "new@example.com", Name: "New"}, "token", nil)

	id, err := svc.Login(ctx, "new@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", id.User.Email)
	assert.False(t, id.User.IsCreator)
	assert.Empty(t, id.RoleList())
	assert.Nil(t, id.OwnedTenantID)

	stored, err := repos.Users.GetByGhostMemberID(ctx, "member-1")
	require.NoError(t, err)
	assert.Equal(t, id.User.ID, stored.ID)
	assert.Equal(t, "New", stored.DisplayName())
	members.AssertExpectations(t)
}

func TestLogin_UpdatesExistingMember(t *testing.T) {
	svc, members, repos := newService(t)
	ctx := context.Background()

	existing := models.NewUser("old@example.com")
	memberID := "member-1"
	existing.GhostMemberID = &memberID
	require.NoError(t, repos.Users.Create(ctx, existing))

	members.On("CreateSession", ctx, "new@example.com", "secret").
		Return(&ghost.Member{ID: "member-1", Email: "new@example.com"}, "token", nil)

	id, err := svc.Login(ctx, "new@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, id.User.ID)
	assert.Equal(t, "new@example.com", id.User.Email)
}

func TestLogin_ClaimsInvitedUser(t *testing.T) {
	svc, members, repos := newService(t)
	ctx := context.Background()

	invited := models.NewUser("invited@example.com")
	require.NoError(t, repos.Users.Create(ctx, invited))

	members.On("CreateSession", ctx, "invited@example.com", "secret").
		Return(&ghost.Member{ID: "member-9", Email: "invited@example.com"}, "token", nil)

	id, err := svc.Login(ctx, "invited@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, invited.ID, id.User.ID)
	assert.True(t, id.User.IsLinked())
}

func TestLogin_EmailLinkedToOtherMember(t *testing.T) {
	svc, members, repos := newService(t)
	ctx := context.Background()

	other := models.NewUser("taken@example.com")
	otherID := "member-other"
	other.GhostMemberID = &otherID
	require.NoError(t, repos.Users.Create(ctx, other))

	members.On("CreateSession", ctx, "taken@example.com", "secret").
		Return(&ghost.Member{ID: "member-new", Email: "taken@example.com"}, "token", nil)

	_, err := svc.Login(ctx, "taken@example.com", "secret")
	assert.True(t, services.IsConflictError(err))
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		ghostErr error
		check    func(error) bool
	}{
		{"missing email", "", "secret", nil, services.IsValidationError},
		{"missing password", "a@example.com", "", nil, services.IsValidationError},
		{"ghost rejects", "a@example.com", "wrong", &ghost.APIError{StatusCode: 401, Message: "bad"}, services.IsUnauthorizedError},
		{"ghost unreachable", "a@example.com", "secret", errors.New("dial tcp"), services.IsUpstreamError},
		{"ghost server error", "a@example.com", "secret", &ghost.APIError{StatusCode: 503, Message: "maintenance"}, services.IsUpstreamError},
		{"wrapped rejection", "a@example.com", "wrong", fmt.Errorf("session: %w", &ghost.APIError{StatusCode: 422, Message: "bad"}), services.IsUnauthorizedError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, members, _ := newService(t)
			if tt.ghostErr != nil {
				members.On("CreateSession", mock.Anything, tt.email, tt.password).Return(nil, "", tt.ghostErr)
			}

			_, err := svc.Login(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
			assert.Equal(t, tt.ghostErr != nil, len(members.Calls) == 1)
		})
	}
}
