package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
	"go.uber.org/zap"
)

// UserRoleRepository implements the repositories.UserRoleRepository interface
type UserRoleRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRoleRepository creates a new role assignment repository
func NewUserRoleRepository(db *DB, logger *zap.Logger) repositories.UserRoleRepository {
	return &UserRoleRepository{
		db:     db,
		logger: logger,
	}
}

// Assign stores an assignment unless an identical one exists
func (r *UserRoleRepository) Assign(ctx context.Context, assignment *models.UserRole) (bool, error) {
	query := `
		INSERT INTO user_roles (id, user_id, role_id, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		assignment.ID,
		assignment.UserID,
		assignment.RoleID,
		nullableUUID(assignment.CreatorID),
		assignment.CreatedAt,
	)
	if err != nil {
		return false, translate(err, "failed to assign role")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, translate(err, "failed to assign role")
	}

	r.logger.Debug("role assignment stored",
		zap.String("user_id", assignment.UserID.String()),
		zap.Bool("created", n > 0),
	)
	return n > 0, nil
}

// Exists reports whether the exact assignment is present
func (r *UserRoleRepository) Exists(ctx context.Context, userID, roleID uuid.UUID, creatorID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_roles
			WHERE user_id = $1 AND role_id = $2 AND creator_id IS NOT DISTINCT FROM $3
		)
	`

	executor := GetExecutor(ctx, r.db)
	var exists bool
	if err := executor.QueryRowContext(ctx, query, userID, roleID, nullableUUID(creatorID)).Scan(&exists); err != nil {
		return false, translate(err, "failed to check role assignment")
	}
	return exists, nil
}

// ListAssignments retrieves every assignment of a user with role names
func (r *UserRoleRepository) ListAssignments(ctx context.Context, userID uuid.UUID) ([]models.RoleAssignment, error) {
	query := `
		SELECT r.name, ur.creator_id
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name, ur.created_at
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translate(err, "failed to list role assignments")
	}
	defer rows.Close()

	assignments := []models.RoleAssignment{}
	for rows.Next() {
		var (
			name      string
			creatorID uuid.NullUUID
		)
		if err := rows.Scan(&name, &creatorID); err != nil {
			return nil, translate(err, "failed to scan role assignment")
		}
		assignment := models.RoleAssignment{RoleName: name}
		if creatorID.Valid {
			id := creatorID.UUID
			assignment.CreatorID = &id
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "failed to iterate role assignments")
	}
	return assignments, nil
}

// ListMembers retrieves the users holding a role scoped to creatorID
func (r *UserRoleRepository) ListMembers(ctx context.Context, creatorID uuid.UUID) ([]*models.CreatorMember, error) {
	query := `
		SELECT u.id, u.email, u.name, array_agg(DISTINCT r.name ORDER BY r.name)
		FROM user_roles ur
		JOIN users u ON u.id = ur.user_id
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.creator_id = $1
		GROUP BY u.id, u.email, u.name
		ORDER BY u.email
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, translate(err, "failed to list creator members")
	}
	defer rows.Close()

	members := []*models.CreatorMember{}
	for rows.Next() {
		member := &models.CreatorMember{}
		if err := rows.Scan(&member.UserID, &member.Email, &member.Name, pq.Array(&member.Roles)); err != nil {
			return nil, translate(err, "failed to scan creator member")
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "failed to iterate creator members")
	}
	return members, nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
