package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oncallhq/pagerbot/internal/adapter/handler"
	"github.com/oncallhq/pagerbot/internal/adapter/presenter"
	"github.com/oncallhq/pagerbot/internal/domain/repository"
	"github.com/oncallhq/pagerbot/internal/infrastructure/config"
	"github.com/oncallhq/pagerbot/internal/infrastructure/observability"
	"github.com/oncallhq/pagerbot/internal/infrastructure/pagerduty"
	"github.com/oncallhq/pagerbot/internal/infrastructure/persistence/instrumented"
	"github.com/oncallhq/pagerbot/internal/infrastructure/persistence/memory"
	"github.com/oncallhq/pagerbot/internal/infrastructure/persistence/mysql"
	"github.com/oncallhq/pagerbot/internal/infrastructure/persistence/sqlite"
	"github.com/oncallhq/pagerbot/internal/infrastructure/server"
	infraslack "github.com/oncallhq/pagerbot/internal/infrastructure/slack"
	"github.com/oncallhq/pagerbot/internal/usecase/pager"
	"github.com/oncallhq/pagerbot/internal/usecase/relay"
)

// version is stamped by the build.
var version = "dev"

func main() {
	// Bootstrap logger until configuration says otherwise
	logger := setupLogger("info", "json")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	logger.Info("configuration loaded",
		"storage_type", cfg.Storage.Type,
		"server_port", cfg.Server.Port,
		"noop", cfg.PagerDuty.Noop,
	)

	manager := config.NewManager(configPath, cfg, logger)
	if err := manager.Watch(); err != nil {
		logger.Warn("config watcher disabled", "error", err)
	}
	defer manager.Close()

	// User email store
	var users repository.UserEmailRepository
	var dbPinger handler.ReadinessChecker
	var sqliteDB *sqlite.DB
	var mysqlDB *mysql.DB

	switch cfg.Storage.Type {
	case "mysql":
		mysqlDB, err = mysql.NewDB(&cfg.Storage.MySQL)
		if err != nil {
			logger.Error("failed to initialize MySQL database", "error", err)
			os.Exit(1)
		}
		if err := mysqlDB.Migrate(context.Background()); err != nil {
			logger.Error("failed to run database migrations", "error", err)
			mysqlDB.Close()
			os.Exit(1)
		}
		users = mysql.NewUserEmailRepository(mysqlDB.DB)
		dbPinger = &sqlPinger{db: mysqlDB.DB}
		logger.Info("MySQL storage initialized",
			"host", cfg.Storage.MySQL.Host,
			"database", cfg.Storage.MySQL.Database,
		)

	case "sqlite":
		sqliteDB, err = sqlite.NewDB(cfg.Storage.SQLite.Path)
		if err != nil {
			logger.Error("failed to initialize SQLite database", "error", err, "path", cfg.Storage.SQLite.Path)
			os.Exit(1)
		}
		if err := sqliteDB.Migrate(context.Background()); err != nil {
			logger.Error("failed to run database migrations", "error", err)
			sqliteDB.Close()
			os.Exit(1)
		}
		users = sqlite.NewUserEmailRepository(sqliteDB.DB)
		dbPinger = &sqlPinger{db: sqliteDB.DB}
		logger.Info("SQLite storage initialized", "path", cfg.Storage.SQLite.Path)

	case "memory", "":
		users = memory.NewUserEmailRepository()
		logger.Info("in-memory storage initialized")

	default:
		logger.Error("unknown storage type", "type", cfg.Storage.Type)
		os.Exit(1)
	}

	// Telemetry
	telemetry, err := observability.NewTelemetry(observability.ServiceName, version)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	users = instrumented.NewUserEmailRepository(users, telemetry.Metrics, cfg.Storage.Type)

	// PagerDuty REST client
	policy := pagerduty.DefaultReconcilePolicy()
	if cfg.PagerDuty.ReconcileDelay > 0 {
		policy.InitialDelay = cfg.PagerDuty.ReconcileDelay
	}
	if cfg.PagerDuty.ReconcileRetries > 0 {
		policy.MaxRetries = cfg.PagerDuty.ReconcileRetries
	}

	pdClient := pagerduty.NewClient(
		cfg.PagerDuty.APIToken,
		cfg.PagerDuty.FromEmail,
		logger,
		pagerduty.WithReconcilePolicy(policy),
		pagerduty.WithMetrics(telemetry.Metrics),
	)
	pdClient.SetNoop(cfg.PagerDuty.Noop)
	pdClient.SetServiceFilter(cfg.PagerDuty.ServiceFilter)
	manager.OnReload(func(c *config.Config) {
		pdClient.SetNoop(c.PagerDuty.Noop)
		pdClient.SetServiceFilter(c.PagerDuty.ServiceFilter)
	})

	events := pagerduty.NewEventsClient(cfg.PagerDuty.IntegrationKey, logger)
	if !events.Configured() {
		logger.Warn("no events integration key configured, trigger commands are disabled")
	}

	slackClient := infraslack.NewClient(cfg.Slack.BotToken, logger)

	// Use cases
	formatter := presenter.NewPagerFormatter("/pager")
	identity := pager.NewIdentityResolver(pdClient, users, manager, logger)
	dispatcher := pager.NewDispatcher(pdClient, events, slackClient, identity, users, formatter, manager, logger)
	relayUC := relay.NewRelayUseCase(slackClient, formatter, manager, logger)

	// Handlers
	readyHandler := handler.NewReadyHandler()
	if dbPinger != nil {
		readyHandler.AddChecker("database", dbPinger)
	}

	handlers := &server.Handlers{
		Health:        handler.NewHealthHandler(),
		Ready:         readyHandler,
		Metrics:       handler.NewMetricsHandler(),
		Reload:        handler.NewReloadHandler(manager, logger),
		SlackCommands: handler.NewSlackCommandsHandler(dispatcher, telemetry.Metrics, logger),
		Webhook:       handler.NewWebhookHandler(relayUC, telemetry.Metrics, logger),
	}

	router := server.NewRouter(handlers, server.RouterConfig{
		SlackSigningSecret: cfg.Slack.SigningSecret,
		WebhookPath:        cfg.Relay.WebhookPath,
		WebhookSecret:      manager.WebhookSecret,
		Metrics:            telemetry.Metrics,
	}, logger)
	srv := server.New(cfg.Server, router, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting pagerbot",
		"version", version,
		"port", cfg.Server.Port,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx := context.Background()
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down telemetry", "error", err)
	}

	if mysqlDB != nil {
		if err := mysqlDB.Close(); err != nil {
			logger.Error("failed to close MySQL database", "error", err)
		}
	}
	if sqliteDB != nil {
		if err := sqliteDB.Close(); err != nil {
			logger.Error("failed to close SQLite database", "error", err)
		}
	}

	logger.Info("pagerbot stopped")
}

// setupLogger creates and configures the logger.
func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var h slog.Handler
	if format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(h)
}

// sqlPinger adapts *sql.DB to the readiness checker contract.
type sqlPinger struct {
	db *sql.DB
}

func (p *sqlPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
