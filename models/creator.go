package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreatorType distinguishes individual creators from church tenants
type CreatorType string

const (
	CreatorTypeIndividual CreatorType = "INDIVIDUAL"
	CreatorTypeChurch     CreatorType = "CHURCH"
)

// IsValid reports whether t is a known creator type
func (t CreatorType) IsValid() bool {
	return t == CreatorTypeIndividual || t == CreatorTypeChurch
}

// Creator is the tenant entity. It owns content in Ghost and is owned by
// exactly one user.
type Creator struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	Name            string          `json:"name" db:"name"`
	Slug            string          `json:"slug" db:"slug"`
	Bio             *string         `json:"bio,omitempty" db:"bio"`
	Avatar          *string         `json:"avatar,omitempty" db:"avatar"`
	Type            CreatorType     `json:"type" db:"type"`
	Settings        json.RawMessage `json:"settings,omitempty" db:"settings"`
	SubscriberCount int             `json:"subscriber_count" db:"-"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Creator model
func (Creator) TableName() string {
	return "creators"
}

// NewCreator creates a new Creator owned by userID
func NewCreator(userID uuid.UUID, name, slug string, creatorType CreatorType) *Creator {
	if creatorType == "" {
		creatorType = CreatorTypeIndividual
	}
	now := time.Now().UTC()
	return &Creator{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Slug:      slug,
		Type:      creatorType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreatorFilter narrows creator listings
type CreatorFilter struct {
	Search string
	Type   CreatorType
	IDs    []uuid.UUID
	Limit  int
	Offset int
}

// GhostAuthorMapping links a creator to its author record in Ghost
type GhostAuthorMapping struct {
	ID            uuid.UUID `json:"id" db:"id"`
	GhostAuthorID string    `json:"ghost_author_id" db:"ghost_author_id"`
	CreatorID     uuid.UUID `json:"creator_id" db:"creator_id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the GhostAuthorMapping model
func (GhostAuthorMapping) TableName() string {
	return "ghost_author_mappings"
}

// NewGhostAuthorMapping creates a mapping row for a freshly resolved Ghost author
func NewGhostAuthorMapping(ghostAuthorID string, creatorID, userID uuid.UUID) *GhostAuthorMapping {
	return &GhostAuthorMapping{
		ID:            uuid.New(),
		GhostAuthorID: ghostAuthorID,
		CreatorID:     creatorID,
		UserID:        userID,
		CreatedAt:     time.Now().UTC(),
	}
}

// CreatorMember is a user holding at least one role scoped to a creator
type CreatorMember struct {
	UserID uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Name   *string   `json:"name,omitempty"`
	Roles  []string  `json:"roles"`
}
