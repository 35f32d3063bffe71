package handlers

import (
	"net/http"

	"github.com/upb/creatorhub/auth"
	"github.com/upb/creatorhub/middleware"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/utils"
)

// AuthDeps provides auth handler for route wiring
type AuthDeps interface {
	AuthHandler() *auth.Handler
}

// AuthLoginHandler returns an http.HandlerFunc for the login endpoint
func AuthLoginHandler(deps AuthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h := deps.AuthHandler(); h != nil {
			h.HandleLogin(w, r)
			return
		}
		_ = utils.WriteInternalServerError(w, "Authentication not configured")
	}
}

// AuthLogoutHandler returns an http.HandlerFunc for the logout endpoint
func AuthLogoutHandler(deps AuthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h := deps.AuthHandler(); h != nil {
			h.HandleLogout(w, r)
			return
		}
		_ = utils.WriteInternalServerError(w, "Authentication not configured")
	}
}

// CurrentUserHandler answers GET /auth/me from the identity resolved by the
// auth guard
func CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	ac := middleware.GetAuthFromContext(r.Context())
	if ac == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, auth.UserResponse{User: models.NewSessionUser(ac.Identity)})
}
