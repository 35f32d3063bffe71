package auth

import (
	"net/http"
	"time"

	"github.com/upb/creatorhub/config"
	"github.com/upb/creatorhub/models"
)

// SessionStore reads and writes the session cookie
type SessionStore struct {
	codec  *TokenCodec
	name   string
	secure bool
}

// NewSessionStore creates a cookie-backed session store
func NewSessionStore(codec *TokenCodec, cfg config.SessionConfig) *SessionStore {
	name := cfg.CookieName
	if name == "" {
		name = "creatorhub-session"
	}
	return &SessionStore{
		codec:  codec,
		name:   name,
		secure: cfg.Secure,
	}
}

// CookieName returns the name of the session cookie
func (s *SessionStore) CookieName() string {
	return s.name
}

// Load returns the verified session carried by r. A missing or invalid
// cookie yields false, never an error.
func (s *SessionStore) Load(r *http.Request) (*models.Session, bool) {
	cookie, err := r.Cookie(s.name)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	session, err := s.codec.Verify(cookie.Value)
	if err != nil {
		return nil, false
	}
	return session, true
}

// Store signs session and writes it as the session cookie
func (s *SessionStore) Store(w http.ResponseWriter, session models.Session) error {
	token, err := s.codec.Issue(session)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(session.TTL() / time.Second),
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear deletes the session cookie
func (s *SessionStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
