// Package subscriptions manages user subscriptions to creators.
package subscriptions

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

// SubscriptionService handles subscribe, unsubscribe and listing
type SubscriptionService struct {
	subscriptions repositories.SubscriptionRepository
	creators      repositories.CreatorRepository
	logger        *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService instance
func NewSubscriptionService(repos *repositories.Repositories, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: repos.Subscriptions,
		creators:      repos.Creators,
		logger:        logger,
	}
}

// Subscribe subscribes user to creatorID. A second subscription to the
// same creator reactivates and updates the existing row; created reports
// whether a new row was inserted.
func (s *SubscriptionService) Subscribe(ctx context.Context, user *models.User, creatorID uuid.UUID, contentType string) (sub *models.Subscription, created bool, err error) {
	if creatorID == uuid.Nil {
		return nil, false, services.Validationf("Creator ID is required")
	}
	if _, err := s.creators.GetByID(ctx, creatorID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, false, services.ErrCreatorNotFound
		}
		return nil, false, services.WrapInternal("failed to load creator", err)
	}

	ghostMemberID := ""
	if user.GhostMemberID != nil {
		ghostMemberID = *user.GhostMemberID
	}
	sub = models.NewSubscription(user.ID, creatorID, ghostMemberID, strings.TrimSpace(contentType))

	created, err = s.subscriptions.Upsert(ctx, sub)
	if err != nil {
		return nil, false, services.WrapInternal("failed to save subscription", err)
	}

	s.logger.Info("subscribed",
		zap.String("user_id", user.ID.String()),
		zap.String("creator_id", creatorID.String()),
		zap.Bool("created", created),
	)
	return sub, created, nil
}

// Unsubscribe deactivates the subscription of userID to creatorID. The
// row is kept.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, creatorID uuid.UUID) error {
	if err := s.subscriptions.Deactivate(ctx, userID, creatorID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrSubscriptionNotFound
		}
		return services.WrapInternal("failed to deactivate subscription", err)
	}
	return nil
}

// ListActive returns the active subscriptions of userID, newest first
func (s *SubscriptionService) ListActive(ctx context.Context, userID uuid.UUID) ([]*models.Subscription, error) {
	subs, err := s.subscriptions.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, services.WrapInternal("failed to list subscriptions", err)
	}
	return subs, nil
}
