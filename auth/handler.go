package auth

import (
	"context"
	"net/http"

	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/services"
	"github.com/upb/creatorhub/utils"
	"go.uber.org/zap"
)

// Authenticator verifies member credentials and returns the resolved identity
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.Identity, error)
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse wraps the public view of the logged in user
type UserResponse struct {
	User models.SessionUser `json:"user"`
}

// Handler handles the login and logout flows
type Handler struct {
	accounts Authenticator
	codec    *TokenCodec
	store    *SessionStore
	logger   *zap.Logger
}

// NewHandler creates a new auth handler
func NewHandler(accounts Authenticator, codec *TokenCodec, store *SessionStore, logger *zap.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		codec:    codec,
		store:    store,
		logger:   logger,
	}
}

// HandleLogin authenticates against Ghost, issues a session and sets the
// session cookie
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, services.ErrCredentialsRequired.Message, nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		_ = utils.WriteBadRequest(w, services.ErrCredentialsRequired.Message, nil)
		return
	}

	identity, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeLoginError(w, err)
		return
	}

	session := h.codec.NewSession(identity)
	if err := h.store.Store(w, session); err != nil {
		h.logger.Error("failed to issue session", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to create session")
		return
	}

	h.logger.Info("user logged in", zap.String("user_id", identity.ID().String()))
	_ = utils.WriteJSON(w, http.StatusOK, UserResponse{User: models.NewSessionUser(identity)})
}

// HandleLogout clears the session cookie
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(w)
	_ = utils.WriteMessage(w, "Logged out successfully")
}

func (h *Handler) writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case services.IsValidationError(err):
		_ = utils.WriteBadRequest(w, services.GetErrorMessage(err), nil)
	case services.IsUpstreamError(err):
		h.logger.Error("authentication service unavailable", zap.Error(err))
		_ = utils.WriteInternalServerError(w, services.GetErrorMessage(err))
	case services.IsInternalError(err):
		h.logger.Error("login failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Login failed")
	default:
		message := services.GetErrorMessage(err)
		if message == "" {
			message = services.ErrLoginFailed.Message
		}
		_ = utils.WriteUnauthorized(w, message)
	}
}
