package devauth

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// account is a stored user of the development backend.
type account struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
}

// memoryStore keeps accounts in memory, keyed by lower-cased email.
type memoryStore struct {
	mu      sync.RWMutex
	byEmail map[string]*account
	byID    map[string]*account
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byEmail: make(map[string]*account),
		byID:    make(map[string]*account),
	}
}

func (s *memoryStore) Create(_ context.Context, a *account) (*account, error) {
	key := strings.ToLower(a.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[key]; exists {
		return nil, ErrUserExists
	}

	stored := *a
	stored.ID = uuid.NewString()
	s.byEmail[key] = &stored
	s.byID[stored.ID] = &stored

	clone := stored
	return &clone, nil
}

func (s *memoryStore) FindByEmail(_ context.Context, email string) (*account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *a
	return &clone, nil
}

func (s *memoryStore) FindByID(_ context.Context, id string) (*account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *a
	return &clone, nil
}
