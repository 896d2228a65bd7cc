package auth

import (
	"context"
	"sync"

	"github.com/vidstream/backend/internal/repositories"
)

// NewInMemoryCredentialStore returns a CredentialStore backed by an in-memory
// map. Users must be registered with AddUser before credentials can be stored.
func NewInMemoryCredentialStore() *InMemoryCredentialStore {
	return &InMemoryCredentialStore{tokens: make(map[string]string)}
}

// InMemoryCredentialStore implements CredentialStore for tests and local development.
type InMemoryCredentialStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// AddUser makes userID known to the store with no credential.
func (s *InMemoryCredentialStore) AddUser(userID string) {
	s.mu.Lock()
	s.tokens[userID] = ""
	s.mu.Unlock()
}

// RemoveUser forgets userID, as if the account had been deleted.
func (s *InMemoryCredentialStore) RemoveUser(userID string) {
	s.mu.Lock()
	delete(s.tokens, userID)
	s.mu.Unlock()
}

func (s *InMemoryCredentialStore) StoreRefreshToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[userID]; !ok {
		return repositories.ErrNotFound
	}
	s.tokens[userID] = token
	return nil
}

func (s *InMemoryCredentialStore) LoadRefreshToken(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[userID]
	if !ok {
		return "", repositories.ErrNotFound
	}
	return token, nil
}

func (s *InMemoryCredentialStore) SwapRefreshToken(_ context.Context, userID, current, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[userID]
	if !ok || token == "" || token != current {
		return false, nil
	}
	s.tokens[userID] = next
	return true, nil
}

func (s *InMemoryCredentialStore) ClearRefreshToken(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[userID]; !ok {
		return repositories.ErrNotFound
	}
	s.tokens[userID] = ""
	return nil
}

// Stored reports the credential currently held for userID. Useful for tests.
func (s *InMemoryCredentialStore) Stored(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[userID]
}
