package content

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/creatorhub/ghost"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
	"github.com/upb/creatorhub/repositories/memory"
	"github.com/upb/creatorhub/services"
	"go.uber.org/zap"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) FindAuthorByEmail(ctx context.Context, email string) (*ghost.Author, error) {
	args := m.Called(ctx, email)
	author, _ := args.Get(0).(*ghost.Author)
	return author, args.Error(1)
}

func (m *MockGateway) CreateAuthor(ctx context.Context, name, email, slug string) (*ghost.Author, error) {
	args := m.Called(ctx, name, email, slug)
	author, _ := args.Get(0).(*ghost.Author)
	return author, args.Error(1)
}

func (m *MockGateway) CreatePost(ctx context.Context, post ghost.NewPost) (ghost.Post, error) {
	args := m.Called(ctx, post)
	p, _ := args.Get(0).(ghost.Post)
	return p, args.Error(1)
}

func (m *MockGateway) ListPosts(ctx context.Context, q ghost.PostQuery) (*ghost.PostPage, error) {
	args := m.Called(ctx, q)
	page, _ := args.Get(0).(*ghost.PostPage)
	return page, args.Error(1)
}

func seedCreator(t *testing.T, repos *repositories.Repositories) (*models.User, *models.Creator) {
	t.Helper()
	ctx := context.Background()
	owner := models.NewUser("owner@example.com")
	require.NoError(t, repos.Users.Create(ctx, owner))
	creator := models.NewCreator(owner.ID, "Owner Pages", "owner-pages", "")
	require.NoError(t, repos.Creators.Create(ctx, creator))
	return owner, creator
}

func TestAuthorService_Setup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates author and mapping once", func(t *testing.T) {
		repos := memory.NewStore().Repositories()
		owner, creator := seedCreator(t, repos)
		gateway := new(MockGateway)
		gateway.On("FindAuthorByEmail", mock.Anything, owner.Email).Return(nil, nil).Once()
		gateway.On("CreateAuthor", mock.Anything, creator.Name, owner.Email, creator.Slug).
			Return(&ghost.Author{ID: "author-1"}, nil).Once()
		svc := NewAuthorService(repos, gateway, ghost.NewRetrier(3, 0, nil), zap.NewNop())

		mapping, created, err := svc.Setup(ctx, creator)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "author-1", mapping.GhostAuthorID)
		assert.Equal(t, owner.ID, mapping.UserID)

		again, created, err := svc.Setup(ctx, creator)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, mapping.ID, again.ID)
		gateway.AssertExpectations(t)
	})

	t.Run("reuses existing ghost author", func(t *testing.T) {
		repos := memory.NewStore().Repositories()
		owner, creator := seedCreator(t, repos)
		gateway := new(MockGateway)
		gateway.On("FindAuthorByEmail", mock.Anything, owner.Email).Return(&ghost.Author{ID: "author-7"}, nil)
		svc := NewAuthorService(repos, gateway, ghost.NewRetrier(3, 0, nil), zap.NewNop())

		mapping, created, err := svc.Setup(ctx, creator)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "author-7", mapping.GhostAuthorID)
		gateway.AssertNotCalled(t, "CreateAuthor", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("retries then reports upstream error", func(t *testing.T) {
		repos := memory.NewStore().Repositories()
		owner, creator := seedCreator(t, repos)
		gateway := new(MockGateway)
		gateway.On("FindAuthorByEmail", mock.Anything, owner.Email).
			Return(nil, &ghost.APIError{StatusCode: 500, Message: "ghost down"})
		svc := NewAuthorService(repos, gateway, ghost.NewRetrier(3, 0, nil), zap.NewNop())

		_, _, err := svc.Setup(ctx, creator)
		require.Error(t, err)
		assert.True(t, services.IsUpstreamError(err))
		assert.Equal(t, "Failed to create Ghost author: ghost down", services.GetErrorMessage(err))
		gateway.AssertNumberOfCalls(t, "FindAuthorByEmail", 3)

		_, err = repos.GhostAuthors.GetByCreatorID(ctx, creator.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestPostService_Create(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	owner, creator := seedCreator(t, repos)

	gateway := new(MockGateway)
	svc := NewPostService(repos, gateway, ghost.NewRetrier(3, 0, nil), zap.NewNop())

	t.Run("requires author mapping", func(t *testing.T) {
		_, err := svc.Create(ctx, creator.ID, CreatePostInput{Title: "T", HTML: "<p>x</p>"})
		assert.ErrorIs(t, err, services.ErrAuthorMappingNeeded)
	})

	t.Run("requires title and html", func(t *testing.T) {
		_, err := svc.Create(ctx, creator.ID, CreatePostInput{Title: "T"})
		assert.True(t, services.IsValidationError(err))
	})

	require.NoError(t, repos.GhostAuthors.Create(ctx, models.NewGhostAuthorMapping("author-1", creator.ID, owner.ID)))

	t.Run("tags post with tenant", func(t *testing.T) {
		tenantTag := "tenant_id:" + creator.ID.String()
		want := ghost.NewPost{
			Title:   "Hello",
			HTML:    "<p>hi</p>",
			Tags:    []ghost.Tag{{Name: "news"}, {Name: tenantTag}},
			Authors: []ghost.AuthorRef{{ID: "author-1"}},
		}
		gateway.On("CreatePost", mock.Anything, want).Return(ghost.Post(`{"id":"post-1"}`), nil).Once()

		post, err := svc.Create(ctx, creator.ID, CreatePostInput{
			Title: "Hello",
			HTML:  "<p>hi</p>",
			Tags:  []string{"news", "news", tenantTag},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"post-1"}`, string(post))
	})
}

func TestPostService_List(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	_, creator := seedCreator(t, repos)
	creatorID := creator.ID
	gateway := new(MockGateway)
	svc := NewPostService(repos, gateway, ghost.NewRetrier(2, 0, nil), zap.NewNop())

	_, err := svc.List(ctx, uuid.New(), ListPostsInput{})
	assert.ErrorIs(t, err, services.ErrCreatorNotFound)
	gateway.AssertNotCalled(t, "ListPosts", mock.Anything, mock.Anything)

	page := &ghost.PostPage{Posts: []ghost.Post{json.RawMessage(`{"id":"p"}`)}, Meta: json.RawMessage(`{}`)}
	gateway.On("ListPosts", mock.Anything, ghost.PostQuery{
		Filter: "tag:tenant_id:" + creatorID.String() + "+tag:content_type:VIDEO",
		Limit:  10,
		Page:   1,
	}).Return(page, nil).Once()

	got, err := svc.List(ctx, creatorID, ListPostsInput{ContentType: "VIDEO"})
	require.NoError(t, err)
	assert.Len(t, got.Posts, 1)

	gateway.On("ListPosts", mock.Anything, ghost.PostQuery{
		Filter: "tag:tenant_id:" + creatorID.String(),
		Limit:  100,
		Page:   3,
	}).Return(nil, errors.New("timeout")).Twice()

	_, err = svc.List(ctx, creatorID, ListPostsInput{Limit: 500, Page: 3})
	assert.True(t, services.IsUpstreamError(err))
	gateway.AssertExpectations(t)
}

func TestPostFilter(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	tests := []struct {
		contentType string
		want        string
	}{
		{"", "tag:tenant_id:" + id.String()},
		{"ALL", "tag:tenant_id:" + id.String()},
		{"AUDIO", "tag:tenant_id:" + id.String() + "+tag:content_type:AUDIO"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PostFilter(id, tt.contentType))
	}
}

func TestTenantTags_DoesNotMutateInput(t *testing.T) {
	id := uuid.New()
	in := make([]string, 1, 4)
	in[0] = "a"
	tags := TenantTags(id, in)
	assert.Equal(t, []ghost.Tag{{Name: "a"}, {Name: "tenant_id:" + id.String()}}, tags)
	assert.Len(t, in, 1)
	assert.Equal(t, "", in[:2][1])
}

func TestTenantTags_DropsForeignTenantTags(t *testing.T) {
	mine, other := uuid.New(), uuid.New()

	tags := TenantTags(mine, []string{"tenant_id:" + other.String(), "content_type:devotion", "TENANT_ID:" + other.String()})

	assert.Equal(t, []ghost.Tag{{Name: "content_type:devotion"}, {Name: "tenant_id:" + mine.String()}}, tags)
	for _, tag := range tags {
		assert.NotContains(t, tag.Name, other.String())
	}
}
