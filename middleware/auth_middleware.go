package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/services"
	"github.com/upb/creatorhub/services/tenant"
	"github.com/upb/creatorhub/utils"
	"go.uber.org/zap"
)

// Guard names reported to the decision observer
const (
	GuardAuth   = "auth"
	GuardRole   = "role"
	GuardTenant = "tenant"
)

// Guard outcomes reported to the decision observer
const (
	OutcomeAllowed      = "allowed"
	OutcomeUnauthorized = "unauthorized"
	OutcomeForbidden    = "forbidden"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
)

// SessionLoader reads the verified session of a request
type SessionLoader interface {
	Load(r *http.Request) (*models.Session, bool)
}

// IdentityResolver loads the identity behind a session
type IdentityResolver interface {
	Resolve(ctx context.Context, session *models.Session) (*models.Identity, error)
}

// DecisionObserver is notified of every guard decision
type DecisionObserver interface {
	ObserveGuardDecision(guard, outcome string)
}

// TenantIDFunc extracts the tenant a request acts on
type TenantIDFunc func(r *http.Request) (uuid.UUID, error)

// AuthedHandlerFunc is a handler that runs with a resolved authorization context
type AuthedHandlerFunc func(w http.ResponseWriter, r *http.Request, auth *AuthContext)

// Guard gates requests on a session, a resolved identity and optionally a
// role or tenant scope. Each request moves through session loading, identity
// resolution and the optional check before the wrapped handler runs.
type Guard struct {
	sessions SessionLoader
	resolver IdentityResolver
	observer DecisionObserver
	logger   *zap.Logger
}

// NewGuard creates a new Guard
func NewGuard(sessions SessionLoader, resolver IdentityResolver, logger *zap.Logger) *Guard {
	return &Guard{
		sessions: sessions,
		resolver: resolver,
		logger:   logger,
	}
}

// WithObserver attaches a decision observer and returns g
func (g *Guard) WithObserver(o DecisionObserver) *Guard {
	g.observer = o
	return g
}

// URLParamTenant reads the tenant id from a chi URL parameter
func URLParamTenant(name string) TenantIDFunc {
	return func(r *http.Request) (uuid.UUID, error) {
		return utils.ParseUUID(chi.URLParam(r, name), "creator id")
	}
}

// RequireAuth is a middleware that requires a valid session backed by an
// existing user
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return g.WithAuth(func(w http.ResponseWriter, r *http.Request, _ *AuthContext) {
		next.ServeHTTP(w, r)
	})
}

// RequireRole is a middleware that requires the identity to hold role in
// any scope
func (g *Guard) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return g.WithRole(role, func(w http.ResponseWriter, r *http.Request, _ *AuthContext) {
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTenantAccess is a middleware that requires the identity to own or
// administer the tenant named by tenantID
func (g *Guard) RequireTenantAccess(tenantID TenantIDFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return g.WithTenantAccess(tenantID, func(w http.ResponseWriter, r *http.Request, _ *AuthContext) {
			next.ServeHTTP(w, r)
		})
	}
}

// WithAuth wraps h so it only runs for authenticated requests
func (g *Guard) WithAuth(h AuthedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, r, ok := g.authenticate(w, r)
		if !ok {
			return
		}
		g.observe(GuardAuth, OutcomeAllowed)
		g.serve(w, r, auth, h)
	}
}

// WithRole wraps h so it only runs for identities holding role
func (g *Guard) WithRole(role string, h AuthedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, r, ok := g.authenticate(w, r)
		if !ok {
			return
		}

		if !auth.Identity.HasRole(role) {
			g.logger.Warn("missing required role",
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
				zap.String("user_id", auth.Identity.ID().String()),
				zap.String("required_role", role),
			)
			g.observe(GuardRole, OutcomeForbidden)
			_ = utils.WriteForbidden(w, services.ErrRoleRequired.Message)
			return
		}

		g.observe(GuardRole, OutcomeAllowed)
		g.serve(w, r, auth, h)
	}
}

// WithTenantAccess wraps h so it only runs when the identity may act on the
// tenant named by tenantID
func (g *Guard) WithTenantAccess(tenantID TenantIDFunc, h AuthedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, r, ok := g.authenticate(w, r)
		if !ok {
			return
		}

		requestID := GetRequestIDFromContext(r.Context())
		id, err := tenantID(r)
		if err != nil {
			g.logger.Warn("invalid tenant id",
				zap.String("request_id", requestID),
				zap.Error(err),
			)
			g.observe(GuardTenant, OutcomeInvalid)
			_ = utils.WriteBadRequest(w, err.Error(), nil)
			return
		}

		if !tenant.Check(auth.Identity, id) {
			g.logger.Warn("tenant access denied",
				zap.String("request_id", requestID),
				zap.String("user_id", auth.Identity.ID().String()),
				zap.String("creator_id", id.String()),
			)
			g.observe(GuardTenant, OutcomeForbidden)
			_ = utils.WriteForbidden(w, services.ErrTenantForbidden.Message)
			return
		}

		g.observe(GuardTenant, OutcomeAllowed)
		g.serve(w, r, auth, h)
	}
}

// authenticate loads the session and resolves its identity, reusing an
// authorization context already placed on the request by an outer guard.
// On failure it writes the response and reports false.
func (g *Guard) authenticate(w http.ResponseWriter, r *http.Request) (*AuthContext, *http.Request, bool) {
	ctx := r.Context()
	if auth := GetAuthFromContext(ctx); auth != nil {
		return auth, r, true
	}
	requestID := GetRequestIDFromContext(ctx)

	session, ok := g.sessions.Load(r)
	if !ok {
		g.logger.Warn("missing or invalid session", zap.String("request_id", requestID))
		g.observe(GuardAuth, OutcomeUnauthorized)
		_ = utils.WriteUnauthorized(w, services.ErrUnauthorized.Message)
		return nil, r, false
	}

	identity, err := g.resolver.Resolve(ctx, session)
	if err != nil {
		if services.IsInternalError(err) {
			g.logger.Error("identity resolution failed",
				zap.String("request_id", requestID),
				zap.String("user_id", session.SubjectID.String()),
				zap.Error(err),
			)
			g.observe(GuardAuth, OutcomeError)
			_ = utils.WriteInternalServerError(w, "")
			return nil, r, false
		}
		g.logger.Warn("session subject no longer resolves",
			zap.String("request_id", requestID),
			zap.String("user_id", session.SubjectID.String()),
			zap.Error(err),
		)
		g.observe(GuardAuth, OutcomeUnauthorized)
		_ = utils.WriteUnauthorized(w, services.ErrUnauthorized.Message)
		return nil, r, false
	}

	auth := &AuthContext{Session: session, Identity: identity}
	return auth, r.WithContext(WithAuthContext(ctx, auth)), true
}

// serve runs h and answers a panic with a 500 JSON body
func (g *Guard) serve(w http.ResponseWriter, r *http.Request, auth *AuthContext, h AuthedHandlerFunc) {
	defer func() {
		if p := recover(); p != nil {
			if p == http.ErrAbortHandler {
				panic(p)
			}
			g.logger.Error("panic in guarded handler",
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
				zap.String("panic", fmt.Sprint(p)),
			)
			_ = utils.WriteInternalServerError(w, "")
		}
	}()
	h(w, r, auth)
}

func (g *Guard) observe(guard, outcome string) {
	if g.observer != nil {
		g.observer.ObserveGuardDecision(guard, outcome)
	}
}
