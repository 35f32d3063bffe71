// Package creators manages tenants: creation, profile updates, listings
// and the memberships that delegate access to them.
package creators

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
	"github.com/upb/creatorhub/services"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AuthorProvisioner links a creator to a Ghost author
type AuthorProvisioner interface {
	Setup(ctx context.Context, creator *models.Creator) (*models.GhostAuthorMapping, bool, error)
}

// CreateInput describes a new creator
type CreateInput struct {
	Name string
	Slug string
	Bio  *string
	Type models.CreatorType
}

// UpdateInput holds the optional profile fields of a creator
type UpdateInput struct {
	Name     *string
	Bio      *string
	Avatar   *string
	Settings json.RawMessage
}

// ListInput filters and paginates creator listings
type ListInput struct {
	Search string
	Type   models.CreatorType
	Page   int
	Limit  int
}

// Page is one page of creators
type Page struct {
	Creators []*models.Creator
	Page     int
	Limit    int
	Total    int
}

var errCreatorConflict = errors.New("creator slug or owner already exists")

// CreatorService handles creator lifecycle operations
type CreatorService struct {
	repos   *repositories.Repositories
	txMgr   repositories.TransactionManager
	authors AuthorProvisioner
	logger  *zap.Logger
}

// NewCreatorService creates a new CreatorService instance
func NewCreatorService(repos *repositories.Repositories, txMgr repositories.TransactionManager, authors AuthorProvisioner, logger *zap.Logger) *CreatorService {
	return &CreatorService{
		repos:   repos,
		txMgr:   txMgr,
		authors: authors,
		logger:  logger,
	}
}

// Create makes the user behind identity a creator. The creator row, the
// user's creator flag and the scoped CREATOR role are written in one
// transaction. Ghost author setup runs afterwards and never fails the call.
func (s *CreatorService) Create(ctx context.Context, identity *models.Identity, in CreateInput) (*models.Creator, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Name == "" || in.Slug == "" {
		return nil, services.Validationf("Name and slug are required")
	}
	if in.Type == "" {
		in.Type = models.CreatorTypeIndividual
	}
	if !in.Type.IsValid() {
		return nil, services.Validationf("Invalid creator type %s", in.Type)
	}

	userID := identity.ID()
	if identity.OwnedTenantID != nil {
		return nil, services.ErrAlreadyCreator
	}
	if _, err := s.repos.Creators.GetBySlug(ctx, in.Slug); err == nil {
		return nil, services.ErrSlugTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, services.WrapInternal("failed to check slug", err)
	}

	creator := models.NewCreator(userID, in.Name, in.Slug, in.Type)
	creator.Bio = in.Bio

	err := services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.repos.Creators.Create(ctx, creator); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return errCreatorConflict
			}
			return services.WrapInternal("failed to create creator", err)
		}
		if err := s.repos.Users.SetCreator(ctx, userID, true); err != nil {
			return services.WrapInternal("failed to flag user as creator", err)
		}

		role, err := s.repos.Roles.GetByName(ctx, models.RoleCreator)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				s.logger.Warn("creator role missing, skipping assignment")
				return nil
			}
			return services.WrapInternal("failed to load creator role", err)
		}
		if _, err := s.repos.UserRoles.Assign(ctx, models.NewUserRole(userID, role.ID, &creator.ID)); err != nil {
			return services.WrapInternal("failed to assign creator role", err)
		}
		return nil
	})
	if errors.Is(err, errCreatorConflict) {
		// slug or owner raced with another request; the failed transaction
		// is rolled back so the lookup runs outside it
		if _, ownErr := s.repos.Creators.GetByUserID(ctx, userID); ownErr == nil {
			return nil, services.ErrAlreadyCreator
		}
		return nil, services.ErrSlugTaken
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("creator created",
		zap.String("creator_id", creator.ID.String()),
		zap.String("user_id", userID.String()),
	)

	if s.authors != nil {
		if _, _, err := s.authors.Setup(ctx, creator); err != nil {
			s.logger.Warn("ghost author setup failed; it can be retried through the setup endpoint",
				zap.String("creator_id", creator.ID.String()),
				zap.Error(err),
			)
		}
	}

	return creator, nil
}

// Get returns a creator with its active subscriber count
func (s *CreatorService) Get(ctx context.Context, id uuid.UUID) (*models.Creator, error) {
	creator, err := s.repos.Creators.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrCreatorNotFound
		}
		return nil, services.WrapInternal("failed to load creator", err)
	}
	return creator, nil
}

// Update applies the non-nil fields of in to the creator
func (s *CreatorService) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*models.Creator, error) {
	creator, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, services.Validationf("Name cannot be empty")
		}
		creator.Name = name
	}
	if in.Bio != nil {
		creator.Bio = in.Bio
	}
	if in.Avatar != nil {
		creator.Avatar = in.Avatar
	}
	if len(in.Settings) > 0 {
		if !json.Valid(in.Settings) {
			return nil, services.Validationf("Settings must be valid JSON")
		}
		creator.Settings = in.Settings
	}
	creator.UpdatedAt = time.Now().UTC()

	if err := s.repos.Creators.Update(ctx, creator); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrCreatorNotFound
		}
		return nil, services.WrapInternal("failed to update creator", err)
	}
	return creator, nil
}

// List returns a page of creators, newest first
func (s *CreatorService) List(ctx context.Context, in ListInput) (*Page, error) {
	if in.Type != "" && !in.Type.IsValid() {
		return nil, services.Validationf("Invalid creator type %s", in.Type)
	}
	page, limit := normalizePage(in.Page, in.Limit)

	creators, total, err := s.repos.Creators.List(ctx, models.CreatorFilter{
		Search: strings.TrimSpace(in.Search),
		Type:   in.Type,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, services.WrapInternal("failed to list creators", err)
	}
	return &Page{Creators: creators, Page: page, Limit: limit, Total: total}, nil
}

// Managed returns the creators identity owns or administers
func (s *CreatorService) Managed(ctx context.Context, identity *models.Identity) ([]*models.Creator, error) {
	ids := identity.ManagedList()
	if identity.OwnedTenantID != nil && !identity.Manages(*identity.OwnedTenantID) {
		ids = append([]uuid.UUID{*identity.OwnedTenantID}, ids...)
	}
	if len(ids) == 0 {
		return []*models.Creator{}, nil
	}

	creators, _, err := s.repos.Creators.List(ctx, models.CreatorFilter{IDs: ids, Limit: len(ids)})
	if err != nil {
		return nil, services.WrapInternal("failed to list managed creators", err)
	}
	return creators, nil
}

// Members returns the users holding a role scoped to the creator
func (s *CreatorService) Members(ctx context.Context, id uuid.UUID) ([]*models.CreatorMember, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	members, err := s.repos.UserRoles.ListMembers(ctx, id)
	if err != nil {
		return nil, services.WrapInternal("failed to list members", err)
	}
	return members, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
