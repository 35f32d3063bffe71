package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
	"go.uber.org/zap"
)

// SubscriptionRepository implements the repositories.SubscriptionRepository interface
type SubscriptionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *DB, logger *zap.Logger) repositories.SubscriptionRepository {
	return &SubscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts the subscription or reactivates the existing row for the
// same (user, creator) pair
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) (bool, error) {
	query := `
		INSERT INTO subscriptions (id, user_id, creator_id, ghost_member_id, content_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, creator_id) DO UPDATE
		SET status = EXCLUDED.status,
			content_type = EXCLUDED.content_type,
			ghost_member_id = EXCLUDED.ghost_member_id,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax = 0) AS inserted
	`

	executor := GetExecutor(ctx, r.db)
	var inserted bool
	err := executor.QueryRowContext(ctx, query,
		sub.ID,
		sub.UserID,
		sub.CreatorID,
		sub.GhostMemberID,
		sub.ContentType,
		string(sub.Status),
		sub.CreatedAt,
		sub.UpdatedAt,
	).Scan(&sub.ID, &sub.CreatedAt, &inserted)
	if err != nil {
		return false, translate(err, "failed to upsert subscription")
	}

	r.logger.Debug("subscription stored",
		zap.String("id", sub.ID.String()),
		zap.Bool("inserted", inserted),
	)
	return inserted, nil
}

// GetByUserAndCreator retrieves the subscription of a user to a creator
func (r *SubscriptionRepository) GetByUserAndCreator(ctx context.Context, userID, creatorID uuid.UUID) (*models.Subscription, error) {
	query := `
		SELECT id, user_id, creator_id, ghost_member_id, content_type, status, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1 AND creator_id = $2
	`

	executor := GetExecutor(ctx, r.db)
	sub := &models.Subscription{}
	var status string
	err := executor.QueryRowContext(ctx, query, userID, creatorID).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.CreatorID,
		&sub.GhostMemberID,
		&sub.ContentType,
		&status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, "failed to get subscription")
	}
	sub.Status = models.SubscriptionStatus(status)
	return sub, nil
}

// ListActiveByUser retrieves the active subscriptions of a user with creator summaries
func (r *SubscriptionRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*models.Subscription, error) {
	query := `
		SELECT s.id, s.user_id, s.creator_id, s.ghost_member_id, s.content_type, s.status,
			s.created_at, s.updated_at, c.name, c.slug, c.avatar, c.type
		FROM subscriptions s
		JOIN creators c ON c.id = s.creator_id
		WHERE s.user_id = $1 AND s.status = 'active'
		ORDER BY s.created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translate(err, "failed to list subscriptions")
	}
	defer rows.Close()

	subs := []*models.Subscription{}
	for rows.Next() {
		sub := &models.Subscription{}
		summary := &models.CreatorSummary{}
		var status, creatorType string
		if err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.CreatorID,
			&sub.GhostMemberID,
			&sub.ContentType,
			&status,
			&sub.CreatedAt,
			&sub.UpdatedAt,
			&summary.Name,
			&summary.Slug,
			&summary.Avatar,
			&creatorType,
		); err != nil {
			return nil, translate(err, "failed to scan subscription")
		}
		sub.Status = models.SubscriptionStatus(status)
		summary.ID = sub.CreatorID
		summary.Type = models.CreatorType(creatorType)
		sub.Creator = summary
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "failed to iterate subscriptions")
	}
	return subs, nil
}

// Deactivate moves a subscription to the inactive state
func (r *SubscriptionRepository) Deactivate(ctx context.Context, userID, creatorID uuid.UUID) error {
	query := `
		UPDATE subscriptions
		SET status = 'inactive', updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND creator_id = $2
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, userID, creatorID)
	if err != nil {
		return translate(err, "failed to deactivate subscription")
	}
	return requireAffected(result, "subscription", creatorID)
}
