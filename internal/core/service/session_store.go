package service

import (
	"sync/atomic"

	"github.com/sensorwatch/console/internal/core/domain"
)

// SessionStore holds the current user of the console. It has no exported
// mutators: only SessionService, in this package, replaces or clears it.
// Readers always see either a complete record or nothing.
type SessionStore struct {
	user atomic.Pointer[domain.User]
}

// NewSessionStore returns an empty (unauthenticated) store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Current returns a copy of the current user, or nil when no session is held.
func (s *SessionStore) Current() *domain.User {
	u := s.user.Load()
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// IsAuthenticated reports whether a user is currently held.
func (s *SessionStore) IsAuthenticated() bool {
	return s.user.Load() != nil
}

// IsPrivileged reports whether the current user has the ADMIN role.
func (s *SessionStore) IsPrivileged() bool {
	return s.user.Load().IsAdmin()
}

func (s *SessionStore) replace(u domain.User) {
	s.user.Store(&u)
}

func (s *SessionStore) clear() {
	s.user.Store(nil)
}
