// Package session owns the authentication token and the identity derived
// from it. The Manager is the single writer of token state; everything else
// reads the Session it hands out.
package session

import (
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"gstdesk/pkg/domain"
)

// TokenStore is the durable storage the manager writes through on every
// token change.
type TokenStore interface {
	Token() (string, error)
	PutToken(raw string) error
	DeleteToken() error
}

// Claims are the optional payload fields the client cares about.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt *time.Time
}

// DecodeToken decodes the payload segment of a bearer token without
// verifying the signature; the server remains the authority on validity.
// A token that does not split into three segments, or whose payload is not
// a JSON object, yields ok=false. That is a non-fatal decode failure, not
// an error.
func DecodeToken(raw string) (Claims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Claims{}, false
	}
	out := Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		out.ExpiresAt = &t
	}
	return out, true
}

// Manager holds the raw token and recomputes the derived Session whenever
// it changes. Expiry or decode failure discovered during any read clears
// the stored token in the same call.
type Manager struct {
	store TokenStore
	now   func() time.Time

	mu      sync.Mutex
	session domain.Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source, for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager restores any persisted token from the store. A persisted token
// that no longer decodes is removed rather than surfaced.
func NewManager(store TokenStore, opts ...Option) (*Manager, error) {
	m := &Manager{store: store, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	raw, err := store.Token()
	if err != nil {
		return nil, err
	}
	m.SetToken(raw)
	return m, nil
}

// SetToken stores the raw token, recomputes the Session, and persists the
// token write-through. An empty or undecodable token clears everything.
func (m *Manager) SetToken(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if raw == "" {
		m.clearLocked()
		return
	}
	claims, ok := DecodeToken(raw)
	if !ok {
		m.clearLocked()
		return
	}
	m.session = domain.Session{
		Token:        raw,
		SubjectID:    claims.Subject,
		SubjectEmail: claims.Email,
		ExpiresAt:    claims.ExpiresAt,
	}
	if m.store != nil {
		_ = m.store.PutToken(raw)
	}
}

// Clear drops the token and its derived session, removing the persisted
// copy. Used on logout.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

// Session returns the current session. If the token has expired since the
// last call, the session is cleared here and the zero Session is returned;
// callers never need a second call to observe the logged-out state.
func (m *Manager) Session() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expiredLocked() {
		m.clearLocked()
	}
	return m.session
}

// Token returns the raw token for request authorization, with ok=false when
// no live session is held.
func (m *Manager) Token() (string, bool) {
	s := m.Session()
	return s.Token, s.Token != ""
}

// IsExpired reports whether the held token has passed its exp claim. A
// token without exp never expires; holding no token reports false. Expiry
// discovery clears the session as a side effect.
func (m *Manager) IsExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.expiredLocked() {
		return false
	}
	m.clearLocked()
	return true
}

func (m *Manager) expiredLocked() bool {
	if m.session.Token == "" || m.session.ExpiresAt == nil {
		return false
	}
	return !m.now().Before(*m.session.ExpiresAt)
}

func (m *Manager) clearLocked() {
	m.session = domain.Session{}
	if m.store != nil {
		_ = m.store.DeleteToken()
	}
}
