package pagerduty

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	sdk "github.com/PagerDuty/go-pagerduty"
)

// EventsClient triggers incidents through the legacy events endpoint.
//
// Unlike the REST surface, this endpoint authenticates with a service-level
// integration key, and the incidents it creates only become visible on the
// incident API after a propagation delay.
type EventsClient struct {
	integrationKey string
	httpClient     *http.Client
	logger         *slog.Logger
}

// NewEventsClient creates a legacy events client.
func NewEventsClient(integrationKey string, logger *slog.Logger) *EventsClient {
	return &EventsClient{
		integrationKey: integrationKey,
		httpClient:     http.DefaultClient,
		logger:         logger,
	}
}

// Configured reports whether an integration key is present.
func (e *EventsClient) Configured() bool {
	return e.integrationKey != ""
}

// Trigger creates an incident with the given description and returns the
// incident key to reconcile against the REST API.
func (e *EventsClient) Trigger(ctx context.Context, description string) (string, error) {
	event := sdk.Event{
		ServiceKey:  e.integrationKey,
		Type:        "trigger",
		Description: description,
	}

	resp, err := sdk.CreateEventWithHTTPClient(event, e.httpClient)
	if err != nil {
		return "", fmt.Errorf("creating trigger event: %w", err)
	}
	if resp.Status != "success" {
		return "", fmt.Errorf("trigger event rejected: %s", resp.Message)
	}

	e.logger.Info("trigger event created", "incident_key", resp.IncidentKey)
	return resp.IncidentKey, nil
}
