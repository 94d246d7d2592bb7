package pagerduty

import (
	"context"
	"fmt"
	"time"

	"github.com/oncallhq/pagerbot/internal/domain/entity"
)

// ReconcilePolicy controls how a freshly triggered incident is polled for on
// the REST API. The events endpoint and the incident API are eventually
// consistent, so the first read waits InitialDelay and subsequent attempts
// back off by Multiplier up to MaxRetries.
type ReconcilePolicy struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxRetries   int
}

// DefaultReconcilePolicy mirrors the propagation delay observed in practice:
// first read after 10s, then up to 3 backoff polls.
func DefaultReconcilePolicy() ReconcilePolicy {
	return ReconcilePolicy{
		InitialDelay: 10 * time.Second,
		Multiplier:   2.0,
		MaxRetries:   3,
	}
}

// AwaitIncidents polls FindIncidentsByKey until the key resolves to at least
// one incident, the retry budget is exhausted, or the context is done.
// An exhausted budget returns an empty slice and no error; the caller decides
// how to report it.
func (c *Client) AwaitIncidents(ctx context.Context, incidentKey string) ([]entity.Incident, error) {
	policy := c.reconcile
	delay := policy.InitialDelay

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for incident %s: %w", incidentKey, ctx.Err())
		}

		incidents, err := c.FindIncidentsByKey(ctx, incidentKey)
		if err != nil {
			return nil, err
		}
		if len(incidents) > 0 {
			return incidents, nil
		}

		c.logger.Debug("incident not yet visible, backing off",
			"incident_key", incidentKey,
			"attempt", attempt+1,
		)
		delay = time.Duration(float64(delay) * policy.Multiplier)
	}

	return nil, nil
}
