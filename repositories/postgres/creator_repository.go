package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
	"go.uber.org/zap"
)

const creatorSelect = `
	SELECT c.id, c.user_id, c.name, c.slug, c.bio, c.avatar, c.type, c.settings,
		(SELECT COUNT(*) FROM subscriptions s WHERE s.creator_id = c.id AND s.status = 'active'),
		c.created_at, c.updated_at
	FROM creators c
`

// CreatorRepository implements the repositories.CreatorRepository interface
type CreatorRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCreatorRepository creates a new creator repository
func NewCreatorRepository(db *DB, logger *zap.Logger) repositories.CreatorRepository {
	return &CreatorRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new creator
func (r *CreatorRepository) Create(ctx context.Context, creator *models.Creator) error {
	query := `
		INSERT INTO creators (id, user_id, name, slug, bio, avatar, type, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		creator.ID,
		creator.UserID,
		creator.Name,
		creator.Slug,
		creator.Bio,
		creator.Avatar,
		string(creator.Type),
		nullableJSON(creator.Settings),
		creator.CreatedAt,
		creator.UpdatedAt,
	)
	if err != nil {
		return translate(err, "failed to create creator")
	}

	r.logger.Debug("creator created", zap.String("id", creator.ID.String()), zap.String("slug", creator.Slug))
	return nil
}

// GetByID retrieves a creator by ID with its active subscriber count
func (r *CreatorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Creator, error) {
	return r.getOne(ctx, creatorSelect+` WHERE c.id = $1`, id)
}

// GetBySlug retrieves a creator by slug
func (r *CreatorRepository) GetBySlug(ctx context.Context, slug string) (*models.Creator, error) {
	return r.getOne(ctx, creatorSelect+` WHERE c.slug = $1`, slug)
}

// GetByUserID retrieves the creator owned by a user
func (r *CreatorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Creator, error) {
	return r.getOne(ctx, creatorSelect+` WHERE c.user_id = $1`, userID)
}

func (r *CreatorRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Creator, error) {
	executor := GetExecutor(ctx, r.db)
	creator, err := scanCreator(executor.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, translate(err, "failed to get creator")
	}
	return creator, nil
}

// List retrieves creators matching filter and the total match count
func (r *CreatorRepository) List(ctx context.Context, filter models.CreatorFilter) ([]*models.Creator, int, error) {
	where, args := creatorWhere(filter)

	executor := GetExecutor(ctx, r.db)

	var total int
	countQuery := `SELECT COUNT(*) FROM creators c` + where
	if err := executor.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, translate(err, "failed to count creators")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)
	query := creatorSelect + where + fmt.Sprintf(` ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, translate(err, "failed to list creators")
	}
	defer rows.Close()

	creators := []*models.Creator{}
	for rows.Next() {
		creator, err := scanCreator(rows)
		if err != nil {
			return nil, 0, translate(err, "failed to scan creator")
		}
		creators = append(creators, creator)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err, "failed to iterate creators")
	}

	return creators, total, nil
}

// Update updates the mutable profile fields of a creator
func (r *CreatorRepository) Update(ctx context.Context, creator *models.Creator) error {
	query := `
		UPDATE creators
		SET name = $2, bio = $3, avatar = $4, settings = $5, updated_at = $6
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		creator.ID,
		creator.Name,
		creator.Bio,
		creator.Avatar,
		nullableJSON(creator.Settings),
		creator.UpdatedAt,
	)
	if err != nil {
		return translate(err, "failed to update creator")
	}

	return requireAffected(result, "creator", creator.ID)
}

func creatorWhere(filter models.CreatorFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(c.name ILIKE $%d OR c.slug ILIKE $%d OR c.bio ILIKE $%d)", n, n, n))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		clauses = append(clauses, fmt.Sprintf("c.type = $%d", len(args)))
	}
	if filter.IDs != nil {
		ids := make([]string, 0, len(filter.IDs))
		for _, id := range filter.IDs {
			ids = append(ids, id.String())
		}
		args = append(args, pq.Array(ids))
		clauses = append(clauses, fmt.Sprintf("c.id = ANY($%d::uuid[])", len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCreator(row rowScanner) (*models.Creator, error) {
	creator := &models.Creator{}
	var (
		creatorType string
		settings    []byte
	)
	err := row.Scan(
		&creator.ID,
		&creator.UserID,
		&creator.Name,
		&creator.Slug,
		&creator.Bio,
		&creator.Avatar,
		&creatorType,
		&settings,
		&creator.SubscriberCount,
		&creator.CreatedAt,
		&creator.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	creator.Type = models.CreatorType(creatorType)
	if len(settings) > 0 {
		creator.Settings = json.RawMessage(settings)
	}
	return creator, nil
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
