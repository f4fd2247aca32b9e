// Package identity resolves the authenticated admin for a request.
//
// Identity is always passed explicitly: middleware verifies a token, stores the resulting
// Session on the request context with WithSession, and collaborators ask an injected Provider
// for the current user instead of reading ambient globals.
package identity

import (
	"context"
	"strings"
	"time"
)

// User is the authenticated principal.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a verified login session.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Remaining returns how long the session stays valid relative to now.
func (s Session) Remaining(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	if left := s.ExpiresAt.Sub(now); left > 0 {
		return left
	}
	return 0
}

// Provider answers identity questions for the request bound to ctx.
type Provider interface {
	CurrentUser(ctx context.Context) (User, bool)
	Session(ctx context.Context) (Session, bool)
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// RoleLookup checks role grants in persistent storage.
type RoleLookup interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

type sessionKey struct{}

// WithSession binds a verified session to ctx.
func WithSession(ctx context.Context, session Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext extracts the session stored by WithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	session, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || strings.TrimSpace(session.User.ID) == "" {
		return Session{}, false
	}
	return session, true
}

// ContextProvider is the Provider used by the API: sessions come from the request context and
// roles from the RoleLookup.
type ContextProvider struct {
	roles RoleLookup
}

// NewContextProvider constructs a Provider backed by the request context.
func NewContextProvider(roles RoleLookup) *ContextProvider {
	return &ContextProvider{roles: roles}
}

// CurrentUser returns the user of the session bound to ctx.
func (p *ContextProvider) CurrentUser(ctx context.Context) (User, bool) {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return User{}, false
	}
	return session.User, true
}

// Session returns the session bound to ctx.
func (p *ContextProvider) Session(ctx context.Context) (Session, bool) {
	return SessionFromContext(ctx)
}

// HasRole reports whether userID holds role. Without a lookup nobody holds any role.
func (p *ContextProvider) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if p.roles == nil || strings.TrimSpace(userID) == "" {
		return false, nil
	}
	return p.roles.HasRole(ctx, userID, role)
}
