package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/creatorhub/middleware"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/utils"
	"go.uber.org/zap"
)

// SubscriptionService manages the caller's subscriptions
type SubscriptionService interface {
	Subscribe(ctx context.Context, user *models.User, creatorID uuid.UUID, contentType string) (*models.Subscription, bool, error)
	Unsubscribe(ctx context.Context, userID, creatorID uuid.UUID) error
	ListActive(ctx context.Context, userID uuid.UUID) ([]*models.Subscription, error)
}

// SubscribeRequest is the body of POST /subscriptions
type SubscribeRequest struct {
	CreatorID   string `json:"creatorId"`
	ContentType string `json:"contentType"`
}

// SubscriptionResponse wraps a single subscription
type SubscriptionResponse struct {
	Subscription *models.Subscription `json:"subscription"`
}

// SubscriptionListResponse lists subscriptions
type SubscriptionListResponse struct {
	Subscriptions []*models.Subscription `json:"subscriptions"`
}

// SubscriptionHandler handles subscription HTTP requests
type SubscriptionHandler struct {
	subscriptions SubscriptionService
	logger        *zap.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptions SubscriptionService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// HandleList handles GET /subscriptions
func (h *SubscriptionHandler) HandleList(w http.ResponseWriter, r *http.Request, ac *middleware.AuthContext) {
	subs, err := h.subscriptions.ListActive(r.Context(), ac.Identity.ID())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, SubscriptionListResponse{Subscriptions: subs})
}

// HandleSubscribe handles POST /subscriptions. It answers 201 for a new
// subscription and 200 when an existing one was reactivated or updated.
func (h *SubscriptionHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request, ac *middleware.AuthContext) {
	var req SubscribeRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	creatorID := uuid.Nil
	if raw := strings.TrimSpace(req.CreatorID); raw != "" {
		id, err := utils.ParseUUID(raw, "creatorId")
		if err != nil {
			_ = utils.WriteBadRequest(w, err.Error(), nil)
			return
		}
		creatorID = id
	}

	sub, created, err := h.subscriptions.Subscribe(r.Context(), ac.Identity.User, creatorID, req.ContentType)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	_ = utils.WriteJSON(w, status, SubscriptionResponse{Subscription: sub})
}

// HandleUnsubscribe handles DELETE /subscriptions/{creatorId}
func (h *SubscriptionHandler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request, ac *middleware.AuthContext) {
	creatorID, ok := creatorIDParam(w, r, "creatorId")
	if !ok {
		return
	}
	if err := h.subscriptions.Unsubscribe(r.Context(), ac.Identity.ID(), creatorID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteMessage(w, "Unsubscribed successfully")
}
