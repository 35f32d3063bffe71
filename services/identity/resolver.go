// Package identity loads the persisted user behind a session together with
// its flattened role set.
package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
	"github.com/upb/creatorhub/services"
	"go.uber.org/zap"
)

// Resolver builds an Identity from persisted state. Nothing is cached; every
// call reads users, role assignments and creator ownership afresh.
type Resolver struct {
	users     repositories.UserRepository
	userRoles repositories.UserRoleRepository
	creators  repositories.CreatorRepository
	logger    *zap.Logger
}

// NewResolver creates a new identity resolver
func NewResolver(repos *repositories.Repositories, logger *zap.Logger) *Resolver {
	return &Resolver{
		users:     repos.Users,
		userRoles: repos.UserRoles,
		creators:  repos.Creators,
		logger:    logger,
	}
}

// Resolve loads the identity behind session. It fails with
// services.ErrUserNotFound when the subject no longer exists.
func (r *Resolver) Resolve(ctx context.Context, session *models.Session) (*models.Identity, error) {
	if session == nil {
		return nil, services.ErrUnauthorized
	}
	return r.ResolveUser(ctx, session.SubjectID)
}

// ResolveUser loads the identity of userID
func (r *Resolver) ResolveUser(ctx context.Context, userID uuid.UUID) (*models.Identity, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrUserNotFound.Wrap(err)
		}
		return nil, services.WrapInternal("failed to load user", err)
	}

	assignments, err := r.userRoles.ListAssignments(ctx, userID)
	if err != nil {
		return nil, services.WrapInternal("failed to load role assignments", err)
	}

	var owned *uuid.UUID
	creator, err := r.creators.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		id := creator.ID
		owned = &id
	case errors.Is(err, repositories.ErrNotFound):
	default:
		return nil, services.WrapInternal("failed to load owned creator", err)
	}

	return Flatten(user, assignments, owned), nil
}

// Flatten derives role names and managed tenants from assignments. Role
// names are the union across all scopes; managed tenants are the scopes of
// CREATOR_ADMIN assignments.
func Flatten(user *models.User, assignments []models.RoleAssignment, owned *uuid.UUID) *models.Identity {
	identity := &models.Identity{
		User:             user,
		Assignments:      assignments,
		RoleNames:        make(map[string]struct{}, len(assignments)),
		OwnedTenantID:    owned,
		ManagedTenantIDs: make(map[uuid.UUID]struct{}),
	}
	for _, a := range assignments {
		identity.RoleNames[a.RoleName] = struct{}{}
		if a.RoleName == models.RoleCreatorAdmin && a.CreatorID != nil {
			identity.ManagedTenantIDs[*a.CreatorID] = struct{}{}
		}
	}
	return identity
}
