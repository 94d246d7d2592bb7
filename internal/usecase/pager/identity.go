package pager

import (
	"context"
	"errors"
	"fmt"

	"github.com/oncallhq/pagerbot/internal/domain/entity"
	"github.com/oncallhq/pagerbot/internal/domain/repository"
)

// IdentityResolver maps chat users to their PagerDuty accounts.
//
// The email used for the lookup is chosen in priority order: an email the
// user explicitly told the bot to remember, the email on the chat profile,
// and finally the configured test email. When required is true, every failure
// produces exactly one reply telling the user how to fix it; when required is
// false the resolver stays silent and returns nil.
type IdentityResolver struct {
	api      PagerDutyAPI
	users    repository.UserEmailRepository
	settings Settings
	logger   Logger
}

// NewIdentityResolver creates an IdentityResolver.
func NewIdentityResolver(api PagerDutyAPI, users repository.UserEmailRepository, settings Settings, logger Logger) *IdentityResolver {
	return &IdentityResolver{
		api:      api,
		users:    users,
		settings: settings,
		logger:   logger,
	}
}

// RememberedEmail returns the email the chat user asked the bot to remember,
// or "" when none is stored.
func (r *IdentityResolver) RememberedEmail(ctx context.Context, chatUserID string) (string, error) {
	email, err := r.users.Get(ctx, chatUserID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading remembered email: %w", err)
	}
	return email, nil
}

// Email returns the best-known PagerDuty email for a chat user, or "" when
// no candidate exists.
func (r *IdentityResolver) Email(ctx context.Context, chatUser *entity.ChatUser) (string, error) {
	remembered, err := r.RememberedEmail(ctx, chatUser.ID)
	if err != nil {
		return "", err
	}
	switch {
	case remembered != "":
		return remembered, nil
	case chatUser.Email != "":
		return chatUser.Email, nil
	case chatUser.ProfileEmail != "":
		return chatUser.ProfileEmail, nil
	default:
		return r.settings.TestEmail(), nil
	}
}

// Resolve looks up the PagerDuty user behind a chat user. A nil user with a
// nil error means the account could not be determined; when required is true
// the user has already been told. speakerID is the chat user who issued the
// command: when chatUser is somebody else (a trigger target, an override
// subject) the guidance names them instead of saying "you".
func (r *IdentityResolver) Resolve(ctx context.Context, chatUser *entity.ChatUser, speakerID string, replier Replier, required bool) (*entity.User, error) {
	email, err := r.Email(ctx, chatUser)
	if err != nil {
		return nil, err
	}

	possessive, addressee := "your", "you"
	if chatUser.ID != speakerID {
		name := chatUser.Name
		if name == "" {
			name = chatUser.ID
		}
		possessive, addressee = name+"'s", name
	}

	if email == "" {
		if !required {
			return nil, nil
		}
		return nil, replier.Reply(ctx, fmt.Sprintf(
			"Sorry, I can't figure out %s email address :( Can %s tell me with `/pager me as you@yourdomain.com`?",
			possessive, addressee))
	}

	matches, err := r.api.FindUsersByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up PagerDuty user for %s: %w", email, err)
	}

	if len(matches) != 1 {
		if len(matches) == 0 && !required {
			return nil, nil
		}
		return nil, replier.Reply(ctx, fmt.Sprintf(
			"Sorry, I expected to get 1 user back for %s, but got %d. If %s PagerDuty email is not %s, %s can set it with `/pager me as you@yourdomain.com`",
			email, len(matches), possessive, email, addressee))
	}

	return &matches[0], nil
}
