package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/oncallhq/pagerbot/internal/domain/repository"
)

// UserEmailRepository is the SQLite implementation of
// repository.UserEmailRepository.
type UserEmailRepository struct {
	db *sql.DB
}

// NewUserEmailRepository creates a new SQLite user email repository.
func NewUserEmailRepository(db *sql.DB) *UserEmailRepository {
	return &UserEmailRepository{db: db}
}

// Get returns the remembered email for a chat user.
func (r *UserEmailRepository) Get(ctx context.Context, chatUserID string) (string, error) {
	var email string
	err := r.db.QueryRowContext(ctx,
		"SELECT email FROM user_emails WHERE chat_user_id = ?", chatUserID,
	).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query user email: %w", err)
	}
	return email, nil
}

// Set remembers an email for a chat user, replacing any previous value.
func (r *UserEmailRepository) Set(ctx context.Context, chatUserID, email string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_emails (chat_user_id, email, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(chat_user_id) DO UPDATE SET
			email = excluded.email,
			updated_at = excluded.updated_at`,
		chatUserID, email,
	)
	if err != nil {
		return fmt.Errorf("upsert user email: %w", err)
	}
	return nil
}

// Delete forgets the remembered email for a chat user.
func (r *UserEmailRepository) Delete(ctx context.Context, chatUserID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM user_emails WHERE chat_user_id = ?", chatUserID,
	)
	if err != nil {
		return fmt.Errorf("delete user email: %w", err)
	}
	return nil
}
