package memory

import (
	"context"
	"sync"

	"github.com/oncallhq/pagerbot/internal/domain/repository"
)

// UserEmailRepository is an in-memory implementation of
// repository.UserEmailRepository. Thread-safe for concurrent access.
type UserEmailRepository struct {
	mu     sync.RWMutex
	emails map[string]string // chat user ID -> email
}

// NewUserEmailRepository creates a new in-memory user email repository.
func NewUserEmailRepository() *UserEmailRepository {
	return &UserEmailRepository{
		emails: make(map[string]string),
	}
}

// Get returns the remembered email for a chat user.
func (r *UserEmailRepository) Get(ctx context.Context, chatUserID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email, ok := r.emails[chatUserID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return email, nil
}

// Set remembers an email for a chat user.
func (r *UserEmailRepository) Set(ctx context.Context, chatUserID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.emails[chatUserID] = email
	return nil
}

// Delete forgets the remembered email for a chat user.
func (r *UserEmailRepository) Delete(ctx context.Context, chatUserID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.emails, chatUserID)
	return nil
}
