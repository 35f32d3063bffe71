package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a platform account. Members authenticate through Ghost;
// invited users exist without a GhostMemberID until their first login.
type User struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	Name          *string   `json:"name,omitempty" db:"name"`
	GhostMemberID *string   `json:"ghost_member_id,omitempty" db:"ghost_member_id"`
	IsCreator     bool      `json:"is_creator" db:"is_creator"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance that is not a creator
func NewUser(email string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		IsCreator: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DisplayName returns the user's name, or an empty string when unset
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}

// IsLinked reports whether the user has authenticated through Ghost at least once
func (u *User) IsLinked() bool {
	return u.GhostMemberID != nil && *u.GhostMemberID != ""
}
