package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/upb/creatorhub/ghost"
	"github.com/upb/creatorhub/services"
	"github.com/upb/creatorhub/services/content"
	"go.uber.org/zap"
)

// MockPostService is a mock implementation of PostService
type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) Create(ctx context.Context, creatorID uuid.UUID, in content.CreatePostInput) (ghost.Post, error) {
	args := m.Called(ctx, creatorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ghost.Post), args.Error(1)
}

func (m *MockPostService) List(ctx context.Context, creatorID uuid.UUID, in content.ListPostsInput) (*ghost.PostPage, error) {
	args := m.Called(ctx, creatorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ghost.PostPage), args.Error(1)
}

func TestPostHandler_HandleCreate(t *testing.T) {
	creatorID := uuid.New()
	ac := testAuth("owner@example.com")

	t.Run("created", func(t *testing.T) {
		svc := new(MockPostService)
		in := content.CreatePostInput{Title: "Hello", HTML: "<p>hi</p>", Tags: []string{"news"}}
		svc.On("Create", mock.Anything, creatorID, in).Return(ghost.Post(`{"id":"p1","title":"Hello"}`), nil)

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Hello","html":"<p>hi</p>","tags":["news"]}`))
		w := httptest.NewRecorder()
		NewPostHandler(svc, zap.NewNop()).HandleCreate(w, withURLParams(req, map[string]string{"id": creatorID.String()}), ac)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"post":{"id":"p1","title":"Hello"}}`, w.Body.String())
	})

	t.Run("author mapping missing", func(t *testing.T) {
		svc := new(MockPostService)
		svc.On("Create", mock.Anything, creatorID, mock.Anything).Return(nil, services.ErrAuthorMappingNeeded)

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Hello","html":"<p>hi</p>"}`))
		w := httptest.NewRecorder()
		NewPostHandler(svc, zap.NewNop()).HandleCreate(w, withURLParams(req, map[string]string{"id": creatorID.String()}), ac)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Ghost author mapping not found. Please set up author first."}`, w.Body.String())
	})

	t.Run("bad publish date", func(t *testing.T) {
		svc := new(MockPostService)

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Hello","html":"x","publishedAt":"tomorrow"}`))
		w := httptest.NewRecorder()
		NewPostHandler(svc, zap.NewNop()).HandleCreate(w, withURLParams(req, map[string]string{"id": creatorID.String()}), ac)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPostHandler_HandleList(t *testing.T) {
	creatorID := uuid.New()
	svc := new(MockPostService)
	svc.On("List", mock.Anything, creatorID, content.ListPostsInput{ContentType: "video", Limit: 5, Page: 2}).
		Return(&ghost.PostPage{Posts: []ghost.Post{ghost.Post(`{"id":"p1"}`)}, Meta: json.RawMessage(`{"pagination":{"page":2}}`)}, nil)

	req := httptest.NewRequest(http.MethodGet, "/?contentType=video&limit=5&page=2", nil)
	w := httptest.NewRecorder()
	NewPostHandler(svc, zap.NewNop()).HandleList(w, withURLParams(req, map[string]string{"id": creatorID.String()}), testAuth("reader@example.com"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"posts":[{"id":"p1"}],"meta":{"pagination":{"page":2}}}`, w.Body.String())
	svc.AssertExpectations(t)
}
