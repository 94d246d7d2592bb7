package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/oncallhq/pagerbot/internal/domain/entity"
	"github.com/oncallhq/pagerbot/internal/infrastructure/observability"
	"github.com/oncallhq/pagerbot/internal/usecase/relay"
)

// WebhookHandler handles inbound PagerDuty webhook deliveries.
// NOTE: Signature verification is handled by middleware.PagerDutyAuth.
type WebhookHandler struct {
	relay   *relay.RelayUseCase
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWebhookHandler creates a new PagerDuty webhook handler.
func NewWebhookHandler(relayUC *relay.RelayUseCase, metrics *observability.Metrics, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		relay:   relayUC,
		metrics: metrics,
		logger:  logger,
	}
}

// ServeHTTP handles POST on the configured webhook path.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read request body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var payload entity.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Error("failed to parse webhook payload", "error", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	h.logger.Info("received pagerduty webhook", "messages", len(payload.Messages))

	if err := h.relay.Execute(r.Context(), payload); err != nil {
		h.metrics.RecordWebhookRelayed(r.Context(), false)
		h.logger.Error("failed to relay webhook", "error", err)
		http.Error(w, "relay failed", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordWebhookRelayed(r.Context(), true)
	w.WriteHeader(http.StatusOK)
}
