package server

import (
	"log/slog"
	"net/http"

	"github.com/oncallhq/pagerbot/internal/adapter/handler"
	"github.com/oncallhq/pagerbot/internal/adapter/handler/middleware"
	"github.com/oncallhq/pagerbot/internal/infrastructure/observability"
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	Health        *handler.HealthHandler
	Ready         *handler.ReadyHandler
	Metrics       *handler.MetricsHandler
	Reload        *handler.ReloadHandler
	SlackCommands *handler.SlackCommandsHandler
	Webhook       *handler.WebhookHandler
}

// RouterConfig carries the per-route security settings.
type RouterConfig struct {
	SlackSigningSecret string
	WebhookPath        string
	WebhookSecret      middleware.WebhookSecretGetter
	Metrics            *observability.Metrics
}

// NewRouter creates the HTTP router with all handlers.
func NewRouter(handlers *Handlers, cfg RouterConfig, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.Handle("/health", handlers.Health)
	mux.Handle("/", handlers.Health) // Root path returns health
	if handlers.Ready != nil {
		mux.Handle("/ready", handlers.Ready)
	}

	if handlers.Metrics != nil {
		mux.Handle("/metrics", handlers.Metrics)
	}

	if handlers.Reload != nil {
		mux.Handle("/-/reload", handlers.Reload)
	}

	// Slash commands, behind Slack signature verification
	if handlers.SlackCommands != nil {
		mux.Handle("/slack/commands",
			middleware.SlackAuth(cfg.SlackSigningSecret, logger)(handlers.SlackCommands))
	}

	// Inbound PagerDuty webhook
	if handlers.Webhook != nil {
		path := cfg.WebhookPath
		if path == "" {
			path = "/hook"
		}
		secret := cfg.WebhookSecret
		if secret == nil {
			secret = func() string { return "" }
		}
		mux.Handle(path, middleware.PagerDutyAuth(secret, logger)(handlers.Webhook))
	}

	// Apply middleware stack
	var h http.Handler = mux
	if cfg.Metrics != nil {
		h = middleware.Observability(cfg.Metrics)(h)
	}
	h = middleware.RequestID(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
