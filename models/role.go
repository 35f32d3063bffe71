package models

import (
	"time"

	"github.com/google/uuid"
)

// Well-known role names seeded into the roles table.
const (
	RoleCreator      = "CREATOR"
	RoleCreatorAdmin = "CREATOR_ADMIN"
	RoleSubscriber   = "SUBSCRIBER"
)

// Role is a named permission bundle
type Role struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Role model
func (Role) TableName() string {
	return "roles"
}

// UserRole is a persisted role assignment. A nil CreatorID makes the
// assignment global; otherwise it is scoped to that creator.
type UserRole struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	RoleID    uuid.UUID  `json:"role_id" db:"role_id"`
	CreatorID *uuid.UUID `json:"creator_id,omitempty" db:"creator_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the UserRole model
func (UserRole) TableName() string {
	return "user_roles"
}

// NewUserRole creates a role assignment, scoped when creatorID is non-nil
func NewUserRole(userID, roleID uuid.UUID, creatorID *uuid.UUID) *UserRole {
	return &UserRole{
		ID:        uuid.New(),
		UserID:    userID,
		RoleID:    roleID,
		CreatorID: creatorID,
		CreatedAt: time.Now().UTC(),
	}
}

// RoleAssignment is the resolved (role name, scope) pair used by the
// identity resolver.
type RoleAssignment struct {
	RoleName  string     `json:"role_name"`
	CreatorID *uuid.UUID `json:"creator_id,omitempty"`
}

// IsGlobal reports whether the assignment applies regardless of tenant
func (a RoleAssignment) IsGlobal() bool {
	return a.CreatorID == nil
}
