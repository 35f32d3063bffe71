// Package tenant decides whether an identity may act on a creator.
package tenant

import (
	"github.com/google/uuid"
	"github.com/upb/creatorhub/models"
)

// Check reports whether identity may act on tenantID. Owners and holders of
// the CREATOR_ADMIN role for the tenant are allowed; everyone else is denied.
// The identity is trusted as current because it is resolved per request.
func Check(identity *models.Identity, tenantID uuid.UUID) bool {
	if identity == nil || tenantID == uuid.Nil {
		return false
	}
	if identity.OwnedTenantID != nil && *identity.OwnedTenantID == tenantID {
		return true
	}
	return identity.Manages(tenantID)
}
