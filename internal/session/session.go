package session

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Session is the explicit per-user session object passed to everything that
// needs identity or the bearer token. It replaces ambient global auth state:
// acquired once at session start, invalidated on sign-out, never reached for
// through package-level variables.

// Roles mirror the 'role' column on the users table.
const (
	RoleUser       = "user"
	RoleConsultant = "consultant"
	RoleAdmin      = "admin"
)

var ErrInvalidated = errors.New("session: invalidated")

type Session struct {
	mu          sync.Mutex
	userID      int64
	role        string
	token       string
	startedAt   time.Time
	invalidated bool
}

// Start opens a session for a verified identity.
func Start(userID int64, role, bearerToken string) *Session {
	return &Session{
		userID:    userID,
		role:      role,
		token:     bearerToken,
		startedAt: time.Now(),
	}
}

func (s *Session) UserID() int64        { return s.userID }
func (s *Session) Role() string         { return s.role }
func (s *Session) StartedAt() time.Time { return s.startedAt }

// BearerToken returns the session's token for gateway/processor calls.
// Callers must treat an error as a hard precondition failure (e.g. checkout
// cannot start).
func (s *Session) BearerToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invalidated || s.token == "" {
		return "", ErrInvalidated
	}
	return s.token, nil
}

// Invalidate ends the session (sign-out). Subsequent BearerToken calls fail.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = true
	s.token = ""
}

// Valid reports whether the session can still authorize calls.
func (s *Session) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.invalidated && s.token != ""
}

// IsAdmin reports whether the session belongs to an administrator.
func (s *Session) IsAdmin() bool { return s.role == RoleAdmin }
