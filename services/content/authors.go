// Package content publishes and reads tenant-tagged posts in Ghost.
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/creatorhub/ghost"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
	"github.com/upb/creatorhub/services"
	"go.uber.org/zap"
)

// AuthorGateway is the subset of the Ghost Admin API used for authors
type AuthorGateway interface {
	FindAuthorByEmail(ctx context.Context, email string) (*ghost.Author, error)
	CreateAuthor(ctx context.Context, name, email, slug string) (*ghost.Author, error)
}

// AuthorService links creators to Ghost staff authors
type AuthorService struct {
	mappings repositories.GhostAuthorMappingRepository
	users    repositories.UserRepository
	gateway  AuthorGateway
	retrier  *ghost.Retrier
	logger   *zap.Logger
}

// NewAuthorService creates a new AuthorService instance
func NewAuthorService(repos *repositories.Repositories, gateway AuthorGateway, retrier *ghost.Retrier, logger *zap.Logger) *AuthorService {
	return &AuthorService{
		mappings: repos.GhostAuthors,
		users:    repos.Users,
		gateway:  gateway,
		retrier:  retrier,
		logger:   logger,
	}
}

// Setup returns the Ghost author mapping of creator, creating the Ghost
// author and the mapping when none exists. created reports whether a new
// mapping was stored.
func (s *AuthorService) Setup(ctx context.Context, creator *models.Creator) (mapping *models.GhostAuthorMapping, created bool, err error) {
	existing, err := s.mappings.GetByCreatorID(ctx, creator.ID)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, false, services.WrapInternal("failed to load ghost author mapping", err)
	}

	owner, err := s.users.GetByID(ctx, creator.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, false, services.NewDomainError(services.ErrorTypeNotFound, "Creator user not found", err)
		}
		return nil, false, services.WrapInternal("failed to load creator user", err)
	}

	author, err := ghost.Retry(ctx, s.retrier, "setup_author", func(ctx context.Context) (*ghost.Author, error) {
		found, err := s.gateway.FindAuthorByEmail(ctx, owner.Email)
		if err != nil || found != nil {
			return found, err
		}
		return s.gateway.CreateAuthor(ctx, creator.Name, owner.Email, creator.Slug)
	})
	if err != nil {
		return nil, false, upstream("Failed to create Ghost author", err)
	}

	mapping = models.NewGhostAuthorMapping(author.ID, creator.ID, owner.ID)
	if err := s.mappings.Create(ctx, mapping); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// lost a race with a concurrent setup
			existing, getErr := s.mappings.GetByCreatorID(ctx, creator.ID)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, services.WrapInternal("failed to store ghost author mapping", err)
	}

	s.logger.Info("ghost author mapped",
		zap.String("creator_id", creator.ID.String()),
		zap.String("ghost_author_id", author.ID),
	)
	return mapping, true, nil
}

// upstream turns a content gateway failure into a client-facing error,
// carrying Ghost's own message when it sent one.
func upstream(message string, err error) error {
	var apiErr *ghost.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return services.WrapUpstream(fmt.Sprintf("%s: %s", message, apiErr.Message), err)
	}
	return services.WrapUpstream(message, err)
}
