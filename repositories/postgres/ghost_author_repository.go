package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
	"go.uber.org/zap"
)

// GhostAuthorMappingRepository implements the repositories.GhostAuthorMappingRepository interface
type GhostAuthorMappingRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewGhostAuthorMappingRepository creates a new Ghost author mapping repository
func NewGhostAuthorMappingRepository(db *DB, logger *zap.Logger) repositories.GhostAuthorMappingRepository {
	return &GhostAuthorMappingRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a mapping
func (r *GhostAuthorMappingRepository) Create(ctx context.Context, mapping *models.GhostAuthorMapping) error {
	query := `
		INSERT INTO ghost_author_mappings (id, ghost_author_id, creator_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		mapping.ID,
		mapping.GhostAuthorID,
		mapping.CreatorID,
		mapping.UserID,
		mapping.CreatedAt,
	)
	if err != nil {
		return translate(err, "failed to create ghost author mapping")
	}
	return nil
}

// GetByCreatorID retrieves the mapping of a creator
func (r *GhostAuthorMappingRepository) GetByCreatorID(ctx context.Context, creatorID uuid.UUID) (*models.GhostAuthorMapping, error) {
	query := `
		SELECT id, ghost_author_id, creator_id, user_id, created_at
		FROM ghost_author_mappings
		WHERE creator_id = $1
	`

	executor := GetExecutor(ctx, r.db)
	mapping := &models.GhostAuthorMapping{}
	err := executor.QueryRowContext(ctx, query, creatorID).Scan(
		&mapping.ID,
		&mapping.GhostAuthorID,
		&mapping.CreatorID,
		&mapping.UserID,
		&mapping.CreatedAt,
	)
	if err != nil {
		return nil, translate(err, "failed to get ghost author mapping")
	}
	return mapping, nil
}
