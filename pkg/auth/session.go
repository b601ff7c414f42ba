package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials identify the account being re-authenticated.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the state established by a successful verification.
type Session struct {
	AccessToken  string
	RefreshToken string
	Subject      string
	Email        string
	FirstName    string
	LastName     string
	ExpiresAt    time.Time
}

// DisplayName joins the first and last name.
func (s Session) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Claims are the access token fields the platform API issues.
type Claims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// SessionFromToken reads the claims of an access token into a Session.
func SessionFromToken(accessToken string) (*Session, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrMissingToken
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("auth: parse access token: %w", err)
	}

	session := &Session{
		AccessToken: accessToken,
		Subject:     claims.Subject,
		Email:       claims.Email,
		FirstName:   claims.GivenName,
		LastName:    claims.FamilyName,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// TokenSource supplies the bearer token for API calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// MemoryStore keeps the current session in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	session *Session
	now     func() time.Time
}

var _ TokenSource = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Set replaces the current session. A nil session clears it.
func (s *MemoryStore) Set(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session == nil {
		s.session = nil
		return
	}
	copied := *session
	s.session = &copied
}

// Session returns a copy of the current session.
func (s *MemoryStore) Session() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// Token returns the access token of a live session.
func (s *MemoryStore) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.session.AccessToken == "" {
		return "", ErrNoSession
	}
	if !s.session.ExpiresAt.IsZero() && !s.now().Before(s.session.ExpiresAt) {
		return "", fmt.Errorf("%w: token expired", ErrNoSession)
	}
	return s.session.AccessToken, nil
}
