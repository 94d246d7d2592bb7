package repository

import "context"

// UserEmailRepository stores the per-chat-user PagerDuty email set by the
// "pager me as" command. This is the bot's only persistent state.
type UserEmailRepository interface {
	// Get returns the remembered email for a chat user ID.
	// Returns ErrNotFound when the user has not set one.
	Get(ctx context.Context, chatUserID string) (string, error)

	// Set remembers an email for a chat user ID, replacing any previous value.
	Set(ctx context.Context, chatUserID, email string) error

	// Delete forgets the remembered email. Deleting an absent entry is not
	// an error.
	Delete(ctx context.Context, chatUserID string) error
}
