package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/upb/creatorhub/config"
	"github.com/upb/creatorhub/models"
)

// ErrInvalidToken is returned for any token that is malformed, carries a bad
// signature or has expired. Callers never see the underlying cause.
var ErrInvalidToken = errors.New("invalid token")

const issuer = "creatorhub"

// Claims is the JWT payload of a session token
type Claims struct {
	jwt.RegisteredClaims
	Email            string   `json:"email"`
	Roles            []string `json:"roles"`
	TenantID         string   `json:"tenantId,omitempty"`
	ManagedTenantIDs []string `json:"managedTenantIds,omitempty"`
}

// TokenCodec issues and verifies HMAC signed session tokens
type TokenCodec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec creates a codec from session configuration
func NewTokenCodec(cfg config.SessionConfig) (*TokenCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	var method *jwt.SigningMethodHMAC
	switch cfg.SigningMethod {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing method %q", cfg.SigningMethod)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenCodec{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the lifetime of newly issued sessions
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// NewSession builds an unsigned session for identity starting now
func (c *TokenCodec) NewSession(identity *models.Identity) models.Session {
	issued := c.now().UTC().Truncate(time.Second)
	return models.Session{
		SubjectID:        identity.ID(),
		Email:            identity.User.Email,
		Roles:            identity.RoleList(),
		TenantID:         identity.OwnedTenantID,
		ManagedTenantIDs: identity.ManagedList(),
		IssuedAt:         issued,
		ExpiresAt:        issued.Add(c.ttl),
	}
}

// Issue signs session into a compact token
func (c *TokenCodec) Issue(session models.Session) (string, error) {
	if !session.ExpiresAt.After(session.IssuedAt) {
		return "", errors.New("session must expire after it is issued")
	}
	if session.SubjectID == uuid.Nil {
		return "", errors.New("session subject is required")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   session.SubjectID.String(),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		Email:            session.Email,
		Roles:            session.Roles,
		ManagedTenantIDs: make([]string, 0, len(session.ManagedTenantIDs)),
	}
	if session.TenantID != nil {
		claims.TenantID = session.TenantID.String()
	}
	for _, id := range session.ManagedTenantIDs {
		claims.ManagedTenantIDs = append(claims.ManagedTenantIDs, id.String())
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates token. It has no side effects.
func (c *TokenCodec) Verify(token string) (*models.Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	session, err := sessionFromClaims(claims)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return session, nil
}

func sessionFromClaims(claims *Claims) (*models.Session, error) {
	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, errors.New("missing timestamps")
	}

	session := &models.Session{
		SubjectID:        subject,
		Email:            claims.Email,
		Roles:            claims.Roles,
		ManagedTenantIDs: make([]uuid.UUID, 0, len(claims.ManagedTenantIDs)),
		IssuedAt:         claims.IssuedAt.Time.UTC(),
		ExpiresAt:        claims.ExpiresAt.Time.UTC(),
	}
	if session.Roles == nil {
		session.Roles = []string{}
	}
	if claims.TenantID != "" {
		tenantID, err := uuid.Parse(claims.TenantID)
		if err != nil {
			return nil, fmt.Errorf("invalid tenant id: %w", err)
		}
		session.TenantID = &tenantID
	}
	for _, raw := range claims.ManagedTenantIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid managed tenant id: %w", err)
		}
		session.ManagedTenantIDs = append(session.ManagedTenantIDs, id)
	}
	if !session.ExpiresAt.After(session.IssuedAt) {
		return nil, errors.New("session expires before it is issued")
	}
	return session, nil
}
