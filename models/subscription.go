package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the lifecycle state of a subscription. Rows are
// never deleted; unsubscribing moves them to Inactive.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// ContentTypeAll subscribes to every kind of content a creator publishes
const ContentTypeAll = "ALL"

// Subscription ties a user to a creator
type Subscription struct {
	ID            uuid.UUID          `json:"id" db:"id"`
	UserID        uuid.UUID          `json:"user_id" db:"user_id"`
	CreatorID     uuid.UUID          `json:"creator_id" db:"creator_id"`
	GhostMemberID string             `json:"ghost_member_id" db:"ghost_member_id"`
	ContentType   string             `json:"content_type" db:"content_type"`
	Status        SubscriptionStatus `json:"status" db:"status"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" db:"updated_at"`

	Creator *CreatorSummary `json:"creator,omitempty" db:"-"`
}

// TableName returns the table name for the Subscription model
func (Subscription) TableName() string {
	return "subscriptions"
}

// NewSubscription creates an active subscription
func NewSubscription(userID, creatorID uuid.UUID, ghostMemberID, contentType string) *Subscription {
	if contentType == "" {
		contentType = ContentTypeAll
	}
	now := time.Now().UTC()
	return &Subscription{
		ID:            uuid.New(),
		UserID:        userID,
		CreatorID:     creatorID,
		GhostMemberID: ghostMemberID,
		ContentType:   contentType,
		Status:        SubscriptionActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsActive reports whether the subscription currently delivers content
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionActive
}

// Deactivate moves the subscription to the inactive state
func (s *Subscription) Deactivate() {
	s.Status = SubscriptionInactive
	s.UpdatedAt = time.Now().UTC()
}

// CreatorSummary is the creator projection embedded in subscription listings
type CreatorSummary struct {
	ID     uuid.UUID   `json:"id"`
	Name   string      `json:"name"`
	Slug   string      `json:"slug"`
	Avatar *string     `json:"avatar,omitempty"`
	Type   CreatorType `json:"type"`
}
