package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/creatorhub/ghost"
	"github.com/upb/creatorhub/middleware"
	"github.com/upb/creatorhub/services/content"
	"github.com/upb/creatorhub/utils"
	"go.uber.org/zap"
)

// PostService publishes and lists tenant-scoped posts
type PostService interface {
	Create(ctx context.Context, creatorID uuid.UUID, in content.CreatePostInput) (ghost.Post, error)
	List(ctx context.Context, creatorID uuid.UUID, in content.ListPostsInput) (*ghost.PostPage, error)
}

// CreatePostRequest is the body of POST /creators/{id}/posts
type CreatePostRequest struct {
	Title       string   `json:"title"`
	HTML        string   `json:"html"`
	Excerpt     string   `json:"excerpt"`
	PublishedAt string   `json:"publishedAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Tags        []string `json:"tags"`
}

// PostResponse wraps a single Ghost post
type PostResponse struct {
	Post ghost.Post `json:"post"`
}

// PostHandler handles post HTTP requests
type PostHandler struct {
	posts  PostService
	logger *zap.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		posts:  posts,
		logger: logger,
	}
}

// HandleCreate handles POST /creators/{id}/posts
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request, _ *middleware.AuthContext) {
	creatorID, ok := creatorIDParam(w, r, "id")
	if !ok {
		return
	}
	var req CreatePostRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	post, err := h.posts.Create(r.Context(), creatorID, content.CreatePostInput{
		Title:       req.Title,
		HTML:        req.HTML,
		Excerpt:     req.Excerpt,
		PublishedAt: req.PublishedAt,
		Tags:        req.Tags,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteJSON(w, http.StatusCreated, PostResponse{Post: post})
}

// HandleList handles GET /creators/{id}/posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request, _ *middleware.AuthContext) {
	creatorID, ok := creatorIDParam(w, r, "id")
	if !ok {
		return
	}

	page, err := h.posts.List(r.Context(), creatorID, content.ListPostsInput{
		ContentType: r.URL.Query().Get("contentType"),
		Limit:       utils.QueryInt(r, "limit", 0),
		Page:        utils.QueryInt(r, "page", 1),
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, page)
}
