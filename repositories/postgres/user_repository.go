package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
	"go.uber.org/zap"
)

const userColumns = `id, email, name, ghost_member_id, is_creator, created_at, updated_at`

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, ghost_member_id, is_creator, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.GhostMemberID,
		user.IsCreator,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return translate(err, "failed to create user")
	}

	r.logger.Debug("user created", zap.String("id", user.ID.String()))
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByGhostMemberID retrieves a user by its Ghost member ID
func (r *UserRepository) GetByGhostMemberID(ctx context.Context, ghostMemberID string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE ghost_member_id = $1`, ghostMemberID)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	executor := GetExecutor(ctx, r.db)
	user := &models.User{}

	err := executor.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.GhostMemberID,
		&user.IsCreator,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, "failed to get user")
	}

	return user, nil
}

// Update updates email, name and Ghost linkage of a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, ghost_member_id = $4, updated_at = $5
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.GhostMemberID,
		user.UpdatedAt,
	)
	if err != nil {
		return translate(err, "failed to update user")
	}

	return requireAffected(result, "user", user.ID)
}

// SetCreator flags or unflags a user as a creator owner
func (r *UserRepository) SetCreator(ctx context.Context, id uuid.UUID, isCreator bool) error {
	query := `UPDATE users SET is_creator = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, isCreator)
	if err != nil {
		return translate(err, "failed to update user")
	}

	return requireAffected(result, "user", id)
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func requireAffected(result rowsAffected, entity string, id interface{}) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", entity, id, repositories.ErrNotFound)
	}
	return nil
}
