// Package accounts keeps local users in step with Ghost members.
package accounts

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/creatorhub/ghost"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
	"github.com/upb/creatorhub/services"
	"go.uber.org/zap"
)

// MemberAuthenticator verifies member credentials against Ghost
type MemberAuthenticator interface {
	CreateSession(ctx context.Context, email, password string) (*ghost.Member, string, error)
}

// IdentityResolver loads the identity of a user
type IdentityResolver interface {
	ResolveUser(ctx context.Context, userID uuid.UUID) (*models.Identity, error)
}

// AccountService authenticates members and syncs them into the users table
type AccountService struct {
	users    repositories.UserRepository
	members  MemberAuthenticator
	resolver IdentityResolver
	logger   *zap.Logger
}

// NewAccountService creates a new AccountService instance
func NewAccountService(users repositories.UserRepository, members MemberAuthenticator, resolver IdentityResolver, logger *zap.Logger) *AccountService {
	return &AccountService{
		users:    users,
		members:  members,
		resolver: resolver,
		logger:   logger,
	}
}

// Login authenticates email and password with Ghost, syncs the member and
// returns the freshly resolved identity.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, services.ErrCredentialsRequired
	}

	member, _, err := s.members.CreateSession(ctx, email, password)
	if err != nil {
		s.logger.Warn("ghost member login failed", zap.Error(err))
		return nil, loginError(err)
	}

	user, err := s.SyncMember(ctx, member)
	if err != nil {
		return nil, err
	}

	return s.resolver.ResolveUser(ctx, user.ID)
}

// SyncMember upserts the local user for a Ghost member. Users are matched
// by Ghost member id first; an invited user with the same email and no
// Ghost link is claimed next; otherwise a new non-creator user is created.
func (s *AccountService) SyncMember(ctx context.Context, member *ghost.Member) (*models.User, error) {
	if member == nil || member.ID == "" {
		return nil, services.ErrLoginFailed
	}

	user, err := s.users.GetByGhostMemberID(ctx, member.ID)
	switch {
	case err == nil:
		return s.update(ctx, user, member)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, services.WrapInternal("failed to load user", err)
	}

	user, err = s.users.GetByEmail(ctx, member.Email)
	switch {
	case err == nil:
		if user.IsLinked() && *user.GhostMemberID != member.ID {
			return nil, services.NewDomainError(services.ErrorTypeConflict, "Email is linked to another member", nil)
		}
		s.logger.Info("linking invited user to ghost member",
			zap.String("user_id", user.ID.String()),
			zap.String("ghost_member_id", member.ID),
		)
		return s.update(ctx, user, member)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, services.WrapInternal("failed to load user", err)
	}

	user = models.NewUser(member.Email)
	memberID := member.ID
	user.GhostMemberID = &memberID
	if member.Name != "" {
		name := member.Name
		user.Name = &name
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, services.NewDomainError(services.ErrorTypeConflict, "User already exists", err)
		}
		return nil, services.WrapInternal("failed to create user", err)
	}

	s.logger.Info("created user from ghost member",
		zap.String("user_id", user.ID.String()),
		zap.String("ghost_member_id", member.ID),
	)
	return user, nil
}

func (s *AccountService) update(ctx context.Context, user *models.User, member *ghost.Member) (*models.User, error) {
	memberID := member.ID
	user.GhostMemberID = &memberID
	if member.Email != "" {
		user.Email = member.Email
	}
	if member.Name != "" {
		name := member.Name
		user.Name = &name
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, services.NewDomainError(services.ErrorTypeConflict, "Email is linked to another user", err)
		}
		return nil, services.WrapInternal("failed to update user", err)
	}
	return user, nil
}

// loginError separates rejected credentials from an unavailable Ghost. Only
// a Ghost answer below 500 means the credentials were refused.
func loginError(err error) error {
	var apiErr *ghost.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		return services.ErrLoginFailed.Wrap(err)
	}
	return services.WrapUpstream("Authentication service unavailable", err)
}
