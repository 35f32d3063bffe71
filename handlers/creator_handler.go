package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/creatorhub/middleware"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/services/creators"
	"github.com/upb/creatorhub/utils"
	"go.uber.org/zap"
)

// CreatorService is the creator lifecycle used by CreatorHandler
type CreatorService interface {
	Create(ctx context.Context, identity *models.Identity, in creators.CreateInput) (*models.Creator, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Creator, error)
	Update(ctx context.Context, id uuid.UUID, in creators.UpdateInput) (*models.Creator, error)
	List(ctx context.Context, in creators.ListInput) (*creators.Page, error)
	Managed(ctx context.Context, identity *models.Identity) ([]*models.Creator, error)
	Members(ctx context.Context, id uuid.UUID) ([]*models.CreatorMember, error)
	Invite(ctx context.Context, creatorID uuid.UUID, in creators.InviteInput) (*creators.InviteResult, error)
}

// AuthorSetup links a creator to a Ghost author
type AuthorSetup interface {
	Setup(ctx context.Context, creator *models.Creator) (*models.GhostAuthorMapping, bool, error)
}

// CreateCreatorRequest is the body of POST /creators
type CreateCreatorRequest struct {
	Name string             `json:"name"`
	Slug string             `json:"slug" validate:"omitempty,slug"`
	Bio  *string            `json:"bio"`
	Type models.CreatorType `json:"type"`
}

// UpdateCreatorRequest is the body of PATCH /creators/{id}
type UpdateCreatorRequest struct {
	Name     *string         `json:"name"`
	Bio      *string         `json:"bio"`
	Avatar   *string         `json:"avatar" validate:"omitempty,url"`
	Settings json.RawMessage `json:"settings"`
}

// InviteRequest is the body of POST /creators/{id}/invite
type InviteRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	RoleName string `json:"roleName"`
}

// CreatorResponse wraps a single creator
type CreatorResponse struct {
	Creator *models.Creator `json:"creator"`
}

// CreatorListResponse is one page of creators
type CreatorListResponse struct {
	Creators   []*models.Creator `json:"creators"`
	Pagination Pagination        `json:"pagination"`
}

// Pagination describes the page returned by a listing
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// MembersResponse lists the members of a creator
type MembersResponse struct {
	Members []*models.CreatorMember `json:"members"`
}

// InvitedUser is the public view of an invited user
type InvitedUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  *string   `json:"name,omitempty"`
}

// InviteResponse reports the outcome of an invite
type InviteResponse struct {
	Message string      `json:"message"`
	User    InvitedUser `json:"user"`
}

// GhostAuthorResponse reports the Ghost author mapping of a creator
type GhostAuthorResponse struct {
	Message string                     `json:"message"`
	Mapping *models.GhostAuthorMapping `json:"mapping"`
}

// CreatorHandler handles creator HTTP requests
type CreatorHandler struct {
	creators CreatorService
	authors  AuthorSetup
	logger   *zap.Logger
}

// NewCreatorHandler creates a new CreatorHandler
func NewCreatorHandler(creators CreatorService, authors AuthorSetup, logger *zap.Logger) *CreatorHandler {
	return &CreatorHandler{
		creators: creators,
		authors:  authors,
		logger:   logger,
	}
}

// HandleList handles GET /creators
func (h *CreatorHandler) HandleList(w http.ResponseWriter, r *http.Request, _ *middleware.AuthContext) {
	q := r.URL.Query()
	page, err := h.creators.List(r.Context(), creators.ListInput{
		Search: q.Get("search"),
		Type:   models.CreatorType(q.Get("type")),
		Page:   utils.QueryInt(r, "page", 1),
		Limit:  utils.QueryInt(r, "limit", 0),
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, CreatorListResponse{
		Creators:   page.Creators,
		Pagination: Pagination{Page: page.Page, Limit: page.Limit, Total: page.Total},
	})
}

// HandleManaged handles GET /creators/managed
func (h *CreatorHandler) HandleManaged(w http.ResponseWriter, r *http.Request, ac *middleware.AuthContext) {
	list, err := h.creators.Managed(r.Context(), ac.Identity)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"creators": list})
}

// HandleCreate handles POST /creators
func (h *CreatorHandler) HandleCreate(w http.ResponseWriter, r *http.Request, ac *middleware.AuthContext) {
	var req CreateCreatorRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	creator, err := h.creators.Create(r.Context(), ac.Identity, creators.CreateInput{
		Name: req.Name,
		Slug: req.Slug,
		Bio:  req.Bio,
		Type: req.Type,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteJSON(w, http.StatusCreated, CreatorResponse{Creator: creator})
}

// HandleGet handles GET /creators/{id}
func (h *CreatorHandler) HandleGet(w http.ResponseWriter, r *http.Request, _ *middleware.AuthContext) {
	id, ok := creatorIDParam(w, r, "id")
	if !ok {
		return
	}
	creator, err := h.creators.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, CreatorResponse{Creator: creator})
}

// HandleUpdate handles PATCH /creators/{id}
func (h *CreatorHandler) HandleUpdate(w http.ResponseWriter, r *http.Request, _ *middleware.AuthContext) {
	id, ok := creatorIDParam(w, r, "id")
	if !ok {
		return
	}
	var req UpdateCreatorRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	creator, err := h.creators.Update(r.Context(), id, creators.UpdateInput{
		Name:     req.Name,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
		Settings: req.Settings,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, CreatorResponse{Creator: creator})
}

// HandleInvite handles POST /creators/{id}/invite
func (h *CreatorHandler) HandleInvite(w http.ResponseWriter, r *http.Request, ac *middleware.AuthContext) {
	id, ok := creatorIDParam(w, r, "id")
	if !ok {
		return
	}
	var req InviteRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	result, err := h.creators.Invite(r.Context(), id, creators.InviteInput{Email: req.Email, RoleName: req.RoleName})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("creator invite",
		zap.String("creator_id", id.String()),
		zap.String("invited_by", ac.Identity.ID().String()),
		zap.Bool("created", result.Created),
	)

	status := http.StatusOK
	message := "User invited successfully"
	if result.Created {
		status = http.StatusCreated
		message = "User invited successfully. They need to sign up with Ghost Members API."
	}
	_ = utils.WriteJSON(w, status, InviteResponse{
		Message: message,
		User:    InvitedUser{ID: result.User.ID, Email: result.User.Email, Name: result.User.Name},
	})
}

// HandleMembers handles GET /creators/{id}/members
func (h *CreatorHandler) HandleMembers(w http.ResponseWriter, r *http.Request, _ *middleware.AuthContext) {
	id, ok := creatorIDParam(w, r, "id")
	if !ok {
		return
	}
	members, err := h.creators.Members(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, MembersResponse{Members: members})
}

// HandleSetupGhostAuthor handles POST /creators/{id}/ghost-author
func (h *CreatorHandler) HandleSetupGhostAuthor(w http.ResponseWriter, r *http.Request, _ *middleware.AuthContext) {
	id, ok := creatorIDParam(w, r, "id")
	if !ok {
		return
	}
	creator, err := h.creators.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	mapping, created, err := h.authors.Setup(r.Context(), creator)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if !created {
		_ = utils.WriteJSON(w, http.StatusOK, GhostAuthorResponse{Message: "Ghost author mapping already exists", Mapping: mapping})
		return
	}
	_ = utils.WriteJSON(w, http.StatusCreated, GhostAuthorResponse{Message: "Ghost author created successfully", Mapping: mapping})
}

func creatorIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(chi.URLParam(r, name), "creator id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return uuid.Nil, false
	}
	return id, true
}
