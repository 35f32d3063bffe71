package creators

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
	"github.com/upb/creatorhub/services"
	"go.uber.org/zap"
)

// InviteInput names the invited email and the role to grant
type InviteInput struct {
	Email    string
	RoleName string
}

// InviteResult describes the outcome of an invite
type InviteResult struct {
	User *models.User
	// Created is set when the invite created a placeholder user
	Created bool
	// Assigned is false when the user already held the role
	Assigned bool
}

// Invite grants a creator-scoped role to email. Existing users receive the
// assignment only when they lack it. Unknown emails get a placeholder user
// that is claimed on first Ghost login; user and assignment are written in
// one transaction.
func (s *CreatorService) Invite(ctx context.Context, creatorID uuid.UUID, in InviteInput) (*InviteResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, services.Validationf("Email is required")
	}
	roleName := in.RoleName
	if roleName == "" {
		roleName = models.RoleCreatorAdmin
	}

	if _, err := s.Get(ctx, creatorID); err != nil {
		return nil, err
	}

	role, err := s.repos.Roles.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrUnknownRole.WithDetail("role", roleName)
		}
		return nil, services.WrapInternal("failed to load role", err)
	}

	user, err := s.repos.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		assigned, err := s.repos.UserRoles.Assign(ctx, models.NewUserRole(user.ID, role.ID, &creatorID))
		if err != nil {
			return nil, services.WrapInternal("failed to assign role", err)
		}
		s.logger.Info("invited existing user",
			zap.String("creator_id", creatorID.String()),
			zap.String("user_id", user.ID.String()),
			zap.String("role", roleName),
			zap.Bool("assigned", assigned),
		)
		return &InviteResult{User: user, Assigned: assigned}, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, services.WrapInternal("failed to load user", err)
	}

	user, err = services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) (*models.User, error) {
		placeholder := models.NewUser(email)
		if err := s.repos.Users.Create(ctx, placeholder); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return nil, services.NewDomainError(services.ErrorTypeConflict, "User already exists", err)
			}
			return nil, services.WrapInternal("failed to create invited user", err)
		}
		if _, err := s.repos.UserRoles.Assign(ctx, models.NewUserRole(placeholder.ID, role.ID, &creatorID)); err != nil {
			return nil, services.WrapInternal("failed to assign role", err)
		}
		return placeholder, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invited new user",
		zap.String("creator_id", creatorID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", roleName),
	)
	return &InviteResult{User: user, Created: true, Assigned: true}, nil
}
