package content

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/creatorhub/ghost"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
	"github.com/upb/creatorhub/services"
	"go.uber.org/zap"
)

const (
	tenantTagPrefix      = "tenant_id:"
	contentTypeTagPrefix = "content_type:"

	defaultPostLimit = 10
	maxPostLimit     = 100
)

// PostGateway is the subset of the Ghost APIs used for posts
type PostGateway interface {
	CreatePost(ctx context.Context, post ghost.NewPost) (ghost.Post, error)
	ListPosts(ctx context.Context, q ghost.PostQuery) (*ghost.PostPage, error)
}

// CreatePostInput is a post authored on behalf of a creator
type CreatePostInput struct {
	Title       string
	HTML        string
	Excerpt     string
	PublishedAt string
	Tags        []string
}

// ListPostsInput selects a page of a creator's posts
type ListPostsInput struct {
	ContentType string
	Limit       int
	Page        int
}

// PostService publishes and lists posts scoped to a creator by tag
type PostService struct {
	creators repositories.CreatorRepository
	mappings repositories.GhostAuthorMappingRepository
	gateway  PostGateway
	retrier  *ghost.Retrier
	logger   *zap.Logger
}

// NewPostService creates a new PostService instance
func NewPostService(repos *repositories.Repositories, gateway PostGateway, retrier *ghost.Retrier, logger *zap.Logger) *PostService {
	return &PostService{
		creators: repos.Creators,
		mappings: repos.GhostAuthors,
		gateway:  gateway,
		retrier:  retrier,
		logger:   logger,
	}
}

// Create publishes a post authored by the creator's mapped Ghost author.
// The post always carries the creator's tenant tag.
func (s *PostService) Create(ctx context.Context, creatorID uuid.UUID, in CreatePostInput) (ghost.Post, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.HTML) == "" {
		return nil, services.Validationf("Title and HTML content are required")
	}

	mapping, err := s.mappings.GetByCreatorID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrAuthorMappingNeeded
		}
		return nil, services.WrapInternal("failed to load ghost author mapping", err)
	}

	post := ghost.NewPost{
		Title:       in.Title,
		HTML:        in.HTML,
		Excerpt:     in.Excerpt,
		PublishedAt: in.PublishedAt,
		Tags:        TenantTags(creatorID, in.Tags),
		Authors:     []ghost.AuthorRef{{ID: mapping.GhostAuthorID}},
	}

	created, err := ghost.Retry(ctx, s.retrier, "create_post", func(ctx context.Context) (ghost.Post, error) {
		return s.gateway.CreatePost(ctx, post)
	})
	if err != nil {
		return nil, upstream("Failed to create post", err)
	}
	return created, nil
}

// List reads a page of published posts tagged for the creator
func (s *PostService) List(ctx context.Context, creatorID uuid.UUID, in ListPostsInput) (*ghost.PostPage, error) {
	if _, err := s.creators.GetByID(ctx, creatorID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrCreatorNotFound
		}
		return nil, services.WrapInternal("failed to load creator", err)
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultPostLimit
	}
	if limit > maxPostLimit {
		limit = maxPostLimit
	}
	page := in.Page
	if page <= 0 {
		page = 1
	}

	query := ghost.PostQuery{Filter: PostFilter(creatorID, in.ContentType), Limit: limit, Page: page}
	result, err := ghost.Retry(ctx, s.retrier, "list_posts", func(ctx context.Context) (*ghost.PostPage, error) {
		return s.gateway.ListPosts(ctx, query)
	})
	if err != nil {
		return nil, upstream("Failed to fetch posts", err)
	}
	return result, nil
}

// TenantTags de-duplicates tags, keeping first occurrences in order, and
// appends the tenant tag of creatorID. Caller tags carrying the tenant
// prefix are dropped so a post is only ever visible in its own creator's
// feed.
func TenantTags(creatorID uuid.UUID, tags []string) []ghost.Tag {
	seen := make(map[string]bool, len(tags))
	out := make([]ghost.Tag, 0, len(tags)+1)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] || strings.HasPrefix(strings.ToLower(tag), tenantTagPrefix) {
			continue
		}
		seen[tag] = true
		out = append(out, ghost.Tag{Name: tag})
	}
	return append(out, ghost.Tag{Name: tenantTagPrefix + creatorID.String()})
}

// PostFilter builds the Content API filter selecting a creator's posts,
// narrowed to one content type when contentType is set.
func PostFilter(creatorID uuid.UUID, contentType string) string {
	filter := "tag:" + tenantTagPrefix + creatorID.String()
	if contentType = strings.TrimSpace(contentType); contentType != "" && contentType != models.ContentTypeAll {
		filter += "+tag:" + contentTypeTagPrefix + contentType
	}
	return filter
}
