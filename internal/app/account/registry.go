package account

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type tokenEntry struct {
	userID   string
	issuedAt time.Time
}

// TokenRegistry maps bearer tokens to user IDs with thread-safe access.
// Tokens live as long as the process.
type TokenRegistry struct {
	mu     sync.RWMutex
	tokens map[string]tokenEntry
}

// NewTokenRegistry creates a new token registry.
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		tokens: make(map[string]tokenEntry),
	}
}

// Issue creates a new token for a user.
func (r *TokenRegistry) Issue(userID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	token := uuid.New().String()
	r.tokens[token] = tokenEntry{userID: userID, issuedAt: time.Now()}
	return token
}

// Lookup returns the user ID a token was issued to.
func (r *TokenRegistry) Lookup(token string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.tokens[token]
	if !ok {
		return "", ErrInvalidToken
	}
	return entry.userID, nil
}

// Revoke invalidates a token. Unknown tokens are ignored.
func (r *TokenRegistry) Revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
}

// RevokeUser invalidates every token of a user and returns how many were removed.
func (r *TokenRegistry) RevokeUser(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for token, entry := range r.tokens {
		if entry.userID == userID {
			delete(r.tokens, token)
			n++
		}
	}
	return n
}

// Count returns the number of live tokens.
func (r *TokenRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
