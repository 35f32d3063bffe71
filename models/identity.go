package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Session is the verified content of a session token. It is immutable once
// issued.
type Session struct {
	SubjectID        uuid.UUID   `json:"subject_id"`
	Email            string      `json:"email"`
	Roles            []string    `json:"roles"`
	TenantID         *uuid.UUID  `json:"tenant_id,omitempty"`
	ManagedTenantIDs []uuid.UUID `json:"managed_tenant_ids"`
	IssuedAt         time.Time   `json:"issued_at"`
	ExpiresAt        time.Time   `json:"expires_at"`
}

// TTL returns the lifetime the session was issued with
func (s *Session) TTL() time.Duration {
	return s.ExpiresAt.Sub(s.IssuedAt)
}

// Identity is a user resolved fresh from persistence for a single request,
// with its role assignments flattened.
type Identity struct {
	User             *User
	Assignments      []RoleAssignment
	RoleNames        map[string]struct{}
	OwnedTenantID    *uuid.UUID
	ManagedTenantIDs map[uuid.UUID]struct{}
}

// ID returns the identity's user ID
func (i *Identity) ID() uuid.UUID {
	return i.User.ID
}

// HasRole reports whether any assignment, global or scoped, carries name
func (i *Identity) HasRole(name string) bool {
	_, ok := i.RoleNames[name]
	return ok
}

// Manages reports whether the identity holds the elevated admin role for tenantID
func (i *Identity) Manages(tenantID uuid.UUID) bool {
	_, ok := i.ManagedTenantIDs[tenantID]
	return ok
}

// RoleList returns the flattened role names in sorted order
func (i *Identity) RoleList() []string {
	names := make([]string, 0, len(i.RoleNames))
	for name := range i.RoleNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ManagedList returns the managed tenant IDs in a stable order
func (i *Identity) ManagedList() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(i.ManagedTenantIDs))
	for id := range i.ManagedTenantIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })
	return ids
}

// SessionUser is the public view of an identity returned by login and /me
type SessionUser struct {
	ID                uuid.UUID   `json:"id"`
	Email             string      `json:"email"`
	Name              *string     `json:"name"`
	IsCreator         bool        `json:"isCreator"`
	CreatorID         *uuid.UUID  `json:"creatorId"`
	Roles             []string    `json:"roles"`
	ManagedCreatorIDs []uuid.UUID `json:"managedCreatorIds"`
}

// NewSessionUser builds the public view of identity
func NewSessionUser(identity *Identity) SessionUser {
	return SessionUser{
		ID:                identity.User.ID,
		Email:             identity.User.Email,
		Name:              identity.User.Name,
		IsCreator:         identity.User.IsCreator,
		CreatorID:         identity.OwnedTenantID,
		Roles:             identity.RoleList(),
		ManagedCreatorIDs: identity.ManagedList(),
	}
}
