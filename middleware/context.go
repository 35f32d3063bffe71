package middleware

import (
	"context"

	"github.com/upb/creatorhub/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// AuthContextKey is the context key for the authorization context
	AuthContextKey contextKey = "auth"
)

// AuthContext is the per-request authorization bundle handed to guarded
// handlers. It lives only as long as the request.
type AuthContext struct {
	Session  *models.Session
	Identity *models.Identity
}

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetAuthFromContext retrieves the authorization context set by a guard
func GetAuthFromContext(ctx context.Context) *AuthContext {
	if val := ctx.Value(AuthContextKey); val != nil {
		if auth, ok := val.(*AuthContext); ok {
			return auth
		}
	}
	return nil
}

// WithAuthContext adds an authorization context to the context
func WithAuthContext(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, AuthContextKey, auth)
}
