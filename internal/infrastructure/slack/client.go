package slack

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"

	"github.com/oncallhq/pagerbot/internal/domain/entity"
)

// Client wraps the Slack API for the bot's needs: posting to rooms and
// resolving chat identities.
type Client struct {
	api    *slack.Client
	logger *slog.Logger
}

// NewClient creates a Slack client. An optional API URL overrides the
// default endpoint (tests).
func NewClient(botToken string, logger *slog.Logger, apiURL ...string) *Client {
	var api *slack.Client
	if len(apiURL) > 0 && apiURL[0] != "" {
		api = slack.New(botToken, slack.OptionAPIURL(apiURL[0]))
	} else {
		api = slack.New(botToken)
	}

	return &Client{api: api, logger: logger}
}

// PostMessage posts plain text into a channel. Fire-and-forget callers
// ignore the error beyond logging.
func (c *Client) PostMessage(ctx context.Context, channelID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting slack message: %w", err)
	}
	return nil
}

// UserByID fetches a workspace user and maps it onto the chat identity the
// resolvers work with. The profile email is what Slack actually provides;
// the top-level Email mirrors it for adapters that fill both.
func (c *Client) UserByID(ctx context.Context, userID string) (*entity.ChatUser, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting slack user %s: %w", userID, err)
	}
	return chatUser(user), nil
}

// UserByName finds a workspace user by handle, display name, or real name
// (case-insensitive). Returns nil without error when nobody matches.
func (c *Client) UserByName(ctx context.Context, name string) (*entity.ChatUser, error) {
	users, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing slack users: %w", err)
	}

	needle := strings.ToLower(strings.TrimPrefix(name, "@"))
	for i := range users {
		u := &users[i]
		if u.Deleted || u.IsBot {
			continue
		}
		if strings.ToLower(u.Name) == needle ||
			strings.ToLower(u.Profile.DisplayName) == needle ||
			strings.ToLower(u.RealName) == needle {
			return chatUser(u), nil
		}
	}
	return nil, nil
}

func chatUser(u *slack.User) *entity.ChatUser {
	return &entity.ChatUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Profile.Email,
		ProfileEmail: u.Profile.Email,
	}
}
