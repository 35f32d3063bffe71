package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/creatorhub/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns a context carrying the transaction. Repositories
	// called with it run their statements inside the transaction.
	Context() context.Context
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByGhostMemberID retrieves a user by its Ghost member ID
	GetByGhostMemberID(ctx context.Context, ghostMemberID string) (*models.User, error)

	// Update updates email, name and Ghost linkage of a user
	Update(ctx context.Context, user *models.User) error

	// SetCreator flags or unflags a user as a creator owner
	SetCreator(ctx context.Context, id uuid.UUID, isCreator bool) error
}

// RoleRepository handles role lookups
type RoleRepository interface {
	// GetByName retrieves a role by its unique name
	GetByName(ctx context.Context, name string) (*models.Role, error)

	// List retrieves all roles ordered by name
	List(ctx context.Context) ([]*models.Role, error)
}

// UserRoleRepository handles role assignments
type UserRoleRepository interface {
	// Assign stores an assignment. It reports false without error when an
	// identical assignment already exists.
	Assign(ctx context.Context, assignment *models.UserRole) (bool, error)

	// Exists reports whether the exact assignment is present
	Exists(ctx context.Context, userID, roleID uuid.UUID, creatorID *uuid.UUID) (bool, error)

	// ListAssignments retrieves every assignment of a user with role names
	ListAssignments(ctx context.Context, userID uuid.UUID) ([]models.RoleAssignment, error)

	// ListMembers retrieves the users holding a role scoped to creatorID
	ListMembers(ctx context.Context, creatorID uuid.UUID) ([]*models.CreatorMember, error)
}

// CreatorRepository handles creator (tenant) data operations
type CreatorRepository interface {
	// Create creates a new creator
	Create(ctx context.Context, creator *models.Creator) error

	// GetByID retrieves a creator by ID with its active subscriber count
	GetByID(ctx context.Context, id uuid.UUID) (*models.Creator, error)

	// GetBySlug retrieves a creator by slug
	GetBySlug(ctx context.Context, slug string) (*models.Creator, error)

	// GetByUserID retrieves the creator owned by a user
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Creator, error)

	// List retrieves creators matching filter and the total match count
	List(ctx context.Context, filter models.CreatorFilter) ([]*models.Creator, int, error)

	// Update updates the mutable profile fields of a creator
	Update(ctx context.Context, creator *models.Creator) error
}

// SubscriptionRepository handles subscriptions
type SubscriptionRepository interface {
	// Upsert inserts the subscription or reactivates the existing row for
	// the same (user, creator) pair. It reports whether a row was inserted
	// and refreshes sub from the stored row.
	Upsert(ctx context.Context, sub *models.Subscription) (bool, error)

	// GetByUserAndCreator retrieves the subscription of a user to a creator
	GetByUserAndCreator(ctx context.Context, userID, creatorID uuid.UUID) (*models.Subscription, error)

	// ListActiveByUser retrieves the active subscriptions of a user with
	// creator summaries
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*models.Subscription, error)

	// Deactivate moves a subscription to the inactive state
	Deactivate(ctx context.Context, userID, creatorID uuid.UUID) error
}

// GhostAuthorMappingRepository handles creator to Ghost author links
type GhostAuthorMappingRepository interface {
	// Create stores a mapping
	Create(ctx context.Context, mapping *models.GhostAuthorMapping) error

	// GetByCreatorID retrieves the mapping of a creator
	GetByCreatorID(ctx context.Context, creatorID uuid.UUID) (*models.GhostAuthorMapping, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users         UserRepository
	Roles         RoleRepository
	UserRoles     UserRoleRepository
	Creators      CreatorRepository
	Subscriptions SubscriptionRepository
	GhostAuthors  GhostAuthorMappingRepository
}
