package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"

	"github.com/oncallhq/pagerbot/internal/adapter/presenter"
	"github.com/oncallhq/pagerbot/internal/infrastructure/observability"
	"github.com/oncallhq/pagerbot/internal/usecase/relay"
)

type fakePoster struct {
	channels []string
	messages []string
}

func (p *fakePoster) PostMessage(ctx context.Context, channelID, text string) error {
	p.channels = append(p.channels, channelID)
	p.messages = append(p.messages, text)
	return nil
}

type staticRoom string

func (s staticRoom) Room() string { return string(s) }

func newTestWebhookHandler(t *testing.T, poster *fakePoster) *WebhookHandler {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	metrics, err := observability.NewMetrics(metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	relayUC := relay.NewRelayUseCase(poster, presenter.NewPagerFormatter(""), staticRoom("C123"), logger)
	return NewWebhookHandler(relayUC, metrics, logger)
}

func TestWebhookHandler_RelaysIncidents(t *testing.T) {
	poster := &fakePoster{}
	h := newTestWebhookHandler(t, poster)

	body := `{"messages":[{"type":"incident.trigger","data":{"incident":{"incident_number":7,"status":"triggered","html_url":"https://example.pagerduty.com/incidents/P1"}}}]}`
	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, poster.messages, 1)
	assert.Equal(t, "C123", poster.channels[0])
	assert.Contains(t, poster.messages[0], "You have 1 PagerDuty update(s)")
	assert.Contains(t, poster.messages[0], "Incident # 7")
}

func TestWebhookHandler_InvalidJSON(t *testing.T) {
	poster := &fakePoster{}
	h := newTestWebhookHandler(t, poster)

	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, poster.messages)
}

func TestWebhookHandler_MethodNotAllowed(t *testing.T) {
	poster := &fakePoster{}
	h := newTestWebhookHandler(t, poster)

	req := httptest.NewRequest(http.MethodGet, "/hook", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
