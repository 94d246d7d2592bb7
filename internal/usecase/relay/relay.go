// Package relay forwards PagerDuty webhook deliveries into a chat room.
package relay

import (
	"context"
	"fmt"

	"github.com/oncallhq/pagerbot/internal/adapter/presenter"
	"github.com/oncallhq/pagerbot/internal/domain/entity"
)

// Poster posts messages into a chat channel.
type Poster interface {
	PostMessage(ctx context.Context, channelID, text string) error
}

// Settings exposes the reloadable relay configuration.
type Settings interface {
	Room() string
}

// Logger defines the contract for logging within use cases.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// RelayUseCase turns webhook payloads into chat notifications.
type RelayUseCase struct {
	poster    Poster
	formatter *presenter.PagerFormatter
	settings  Settings
	logger    Logger
}

// NewRelayUseCase creates a RelayUseCase.
func NewRelayUseCase(poster Poster, formatter *presenter.PagerFormatter, settings Settings, logger Logger) *RelayUseCase {
	return &RelayUseCase{
		poster:    poster,
		formatter: formatter,
		settings:  settings,
		logger:    logger,
	}
}

// Execute posts a summary of the webhook's incident messages to the
// configured room. Payloads without incident messages still produce a
// message so a misconfigured webhook is visible in chat.
func (uc *RelayUseCase) Execute(ctx context.Context, payload entity.WebhookPayload) error {
	room := uc.settings.Room()
	if room == "" {
		uc.logger.Warn("webhook received but no relay room configured")
		return nil
	}

	text := uc.formatter.UpdateSummary(payload)
	if text == "" {
		text = "No incidents in webhook"
	}

	if err := uc.poster.PostMessage(ctx, room, text); err != nil {
		return fmt.Errorf("posting webhook summary to %s: %w", room, err)
	}

	uc.logger.Info("relayed webhook", "room", room, "messages", len(payload.Messages))
	return nil
}
