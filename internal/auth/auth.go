package auth

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Identity is the signed-in user, or Anonymous when no session matches.
type Identity struct {
	UserUID string
	Email   string
}

var Anonymous = Identity{}

func (i Identity) IsAnonymous() bool {
	return i.UserUID == ""
}

// Authenticator is the capability check the storefront delegates sign-in
// state to: a token either resolves to an identity or to Anonymous, and
// sign-out revokes the token.
type Authenticator interface {
	CurrentUser(token string) Identity
	SignOut(token string) error
}

// SessionStore is an in-memory Authenticator. Sign-in itself is a
// collaborator concern; SignIn here exists so wiring and tests can mint
// sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Identity // token -> identity
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]Identity)}
}

// SignIn registers an identity and returns its session token.
func (s *SessionStore) SignIn(id Identity) string {
	token := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = id
	return token
}

func (s *SessionStore) CurrentUser(token string) Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.sessions[token]; ok {
		return id
	}
	return Anonymous
}

func (s *SessionStore) SignOut(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, token)
	return nil
}
