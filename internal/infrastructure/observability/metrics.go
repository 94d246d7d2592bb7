package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics.
type Metrics struct {
	meter metric.Meter

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPRequestsActive  metric.Int64UpDownCounter

	// Command processing metrics
	CommandsProcessedTotal    metric.Int64Counter
	CommandProcessingDuration metric.Float64Histogram

	// PagerDuty API metrics
	PagerDutyRequestsTotal metric.Int64Counter
	PagerDutyErrorsTotal   metric.Int64Counter

	// Webhook relay metrics
	WebhooksRelayedTotal metric.Int64Counter
	WebhookErrorsTotal   metric.Int64Counter

	// Repository metrics
	RepositoryOperationsTotal   metric.Int64Counter
	RepositoryOperationDuration metric.Float64Histogram
}

// NewMetrics creates and registers all application metrics.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}

	var err error

	// HTTP metrics
	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_request_duration: %w", err)
	}

	m.HTTPRequestsActive, err = meter.Int64UpDownCounter(
		"http.server.requests.active",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_requests_active: %w", err)
	}

	// Command processing metrics
	m.CommandsProcessedTotal, err = meter.Int64Counter(
		"commands.processed.total",
		metric.WithDescription("Total number of chat commands processed"),
		metric.WithUnit("{commands}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating commands_processed_total: %w", err)
	}

	m.CommandProcessingDuration, err = meter.Float64Histogram(
		"command.processing.duration",
		metric.WithDescription("Chat command processing duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating command_processing_duration: %w", err)
	}

	// PagerDuty API metrics
	m.PagerDutyRequestsTotal, err = meter.Int64Counter(
		"pagerduty.requests.total",
		metric.WithDescription("Total number of PagerDuty API requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pagerduty_requests_total: %w", err)
	}

	m.PagerDutyErrorsTotal, err = meter.Int64Counter(
		"pagerduty.errors.total",
		metric.WithDescription("Total number of failed PagerDuty API requests"),
		metric.WithUnit("{errors}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pagerduty_errors_total: %w", err)
	}

	// Webhook relay metrics
	m.WebhooksRelayedTotal, err = meter.Int64Counter(
		"webhooks.relayed.total",
		metric.WithDescription("Total number of PagerDuty webhooks relayed to chat"),
		metric.WithUnit("{webhooks}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating webhooks_relayed_total: %w", err)
	}

	m.WebhookErrorsTotal, err = meter.Int64Counter(
		"webhooks.errors.total",
		metric.WithDescription("Total number of webhook relay failures"),
		metric.WithUnit("{errors}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating webhook_errors_total: %w", err)
	}

	// Repository metrics
	m.RepositoryOperationsTotal, err = meter.Int64Counter(
		"repository.operations.total",
		metric.WithDescription("Total number of repository operations"),
		metric.WithUnit("{operations}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating repository_operations_total: %w", err)
	}

	m.RepositoryOperationDuration, err = meter.Float64Histogram(
		"repository.operation.duration",
		metric.WithDescription("Repository operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating repository_operation_duration: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordCommand records chat command processing metrics.
func (m *Metrics) RecordCommand(ctx context.Context, family string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("command.family", family),
		attribute.Bool("success", success),
	}

	m.CommandsProcessedTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.CommandProcessingDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordPagerDutyRequest records a PagerDuty REST API call.
func (m *Metrics) RecordPagerDutyRequest(ctx context.Context, method, path string, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("pagerduty.path", path),
	}

	m.PagerDutyRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	if !success {
		m.PagerDutyErrorsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordWebhookRelayed records a webhook relay attempt.
func (m *Metrics) RecordWebhookRelayed(ctx context.Context, success bool) {
	m.WebhooksRelayedTotal.Add(ctx, 1)
	if !success {
		m.WebhookErrorsTotal.Add(ctx, 1)
	}
}

// RecordRepositoryOperation records repository operation metrics.
func (m *Metrics) RecordRepositoryOperation(ctx context.Context, operation, repository string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("db.operation", operation),
		attribute.String("db.repository", repository),
		attribute.Bool("success", success),
	}

	m.RepositoryOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.RepositoryOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
