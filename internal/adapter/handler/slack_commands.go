package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/oncallhq/pagerbot/internal/infrastructure/observability"
	"github.com/oncallhq/pagerbot/internal/usecase/pager"
)

// commandTimeout bounds async command processing after the HTTP request
// has already been acknowledged.
const commandTimeout = 30 * time.Second

// SlackCommandsHandler handles the /pager slash command webhook.
type SlackCommandsHandler struct {
	dispatcher *pager.Dispatcher
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewSlackCommandsHandler creates a new slash commands handler.
func NewSlackCommandsHandler(dispatcher *pager.Dispatcher, metrics *observability.Metrics, logger *slog.Logger) *SlackCommandsHandler {
	return &SlackCommandsHandler{
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// ServeHTTP handles POST /slack/commands requests.
// Slack sends slash commands as application/x-www-form-urlencoded.
func (h *SlackCommandsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		h.logger.Error("failed to parse slash command", "error", err.Error())
		http.Error(w, "Invalid slash command", http.StatusBadRequest)
		return
	}

	h.logger.Info("received slash command",
		"command", cmd.Command,
		"user_id", cmd.UserID,
		"channel_id", cmd.ChannelID,
		"text", cmd.Text)

	// Immediate acknowledgment (Slack requires a response within 3 seconds)
	ack := map[string]string{
		"response_type": "ephemeral",
		"text":          "Working on it...",
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ack); err != nil {
		h.logger.Error("failed to encode immediate response", "error", err.Error())
		return
	}

	// Process asynchronously and answer through response_url
	go h.processCommand(cmd)
}

// processCommand dispatches the command text and sends the replies back
// via the command's response_url.
func (h *SlackCommandsHandler) processCommand(cmd slack.SlashCommand) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	replier := &responseURLReplier{url: cmd.ResponseURL, logger: h.logger}

	family, err := h.dispatcher.Dispatch(ctx, cmd.UserID, cmd.UserName, normalizeText(cmd.Text), replier)

	elapsed := time.Since(start)
	h.metrics.RecordCommand(ctx, family, err == nil, elapsed)

	if err != nil {
		h.logger.Error("slash command failed",
			"family", family,
			"user_id", cmd.UserID,
			"error", err.Error())
		replier.Reply(ctx, "Sorry, something went wrong. Check the logs for details.")
		return
	}

	h.logger.Info("slash command processed",
		"family", family,
		"user_id", cmd.UserID,
		"response_time_ms", elapsed.Milliseconds())
}

// normalizeText maps the slash command argument text onto the chat-bot
// grammar, which expects a leading "pager" keyword. Users type
// "/pager trigger ops it broke", not "/pager pager trigger ...".
func normalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "pager"
	}

	lower := strings.ToLower(text)
	for _, prefix := range []string{"pager", "major", "am i", "who"} {
		if strings.HasPrefix(lower, prefix) {
			return text
		}
	}
	return "pager " + text
}

// responseURLReplier posts replies to the slash command's response_url.
type responseURLReplier struct {
	url    string
	logger *slog.Logger
}

// Reply sends an ephemeral message via the response_url.
func (r *responseURLReplier) Reply(ctx context.Context, text string) error {
	if r.url == "" {
		r.logger.Error("response_url is empty, cannot send delayed response")
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"response_type": "ephemeral",
		"text":          text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		r.logger.Error("failed to send delayed response", "error", err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("delayed response failed",
			"status_code", resp.StatusCode,
			"status", resp.Status)
	}
	return nil
}
