package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Slack     SlackConfig     `yaml:"slack"`
	PagerDuty PagerDutyConfig `yaml:"pagerduty"`
	Relay     RelayConfig     `yaml:"relay"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig holds user-store persistence settings.
type StorageConfig struct {
	Type   string       `yaml:"type"` // "memory", "sqlite", or "mysql"
	SQLite SQLiteConfig `yaml:"sqlite"`
	MySQL  MySQLConfig  `yaml:"mysql"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"` // Database file path, use ":memory:" for in-memory
}

// MySQLConfig holds MySQL-specific settings.
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	Pool MySQLPoolConfig `yaml:"pool"`
}

// MySQLPoolConfig holds MySQL connection pool settings.
type MySQLPoolConfig struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// SlackConfig holds Slack integration settings.
type SlackConfig struct {
	BotToken      string `yaml:"bot_token"`
	SigningSecret string `yaml:"signing_secret"`
}

// PagerDutyConfig holds PagerDuty API settings.
type PagerDutyConfig struct {
	APIToken  string `yaml:"api_token"`
	FromEmail string `yaml:"from_email"`

	// ServiceFilter scopes incident GETs to a service when set.
	ServiceFilter string `yaml:"service_filter"`

	// Noop makes mutating calls log instead of hitting the network.
	Noop bool `yaml:"noop"`

	// IntegrationKey is the service-level key for the legacy events endpoint
	// used by the trigger workflow.
	IntegrationKey string `yaml:"integration_key"`

	// DefaultUserID acts as the requester when the speaker's identity
	// cannot be resolved.
	DefaultUserID string `yaml:"default_user_id"`

	// AllowedSchedules restricts "who's on call" output when non-empty.
	AllowedSchedules []string `yaml:"allowed_schedules"`

	// DefaultSchedule receives pages triggered without a target.
	DefaultSchedule string `yaml:"default_schedule"`

	// TestEmail is the identity fallback for test/dev environments.
	TestEmail string `yaml:"test_email"`

	// The events endpoint and the incident API are eventually consistent.
	// ReconcileDelay is the initial wait before looking up a freshly
	// triggered incident; ReconcileRetries bounds the backoff polls after it.
	ReconcileDelay   time.Duration `yaml:"reconcile_delay"`
	ReconcileRetries int           `yaml:"reconcile_retries"`
}

// RelayConfig holds webhook relay settings.
type RelayConfig struct {
	Room          string `yaml:"room"`           // Slack channel ID for webhook posts
	WebhookPath   string `yaml:"webhook_path"`   // Inbound PagerDuty webhook path
	WebhookSecret string `yaml:"webhook_secret"` // PagerDuty webhook signing secret (optional)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads configuration from file and environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	// Load from file if exists
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			// Expand environment variables in YAML
			expandedData := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Apply defaults
	cfg.applyDefaults()

	// Validate
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// overrideFromEnv overrides config values from environment variables.
func (c *Config) overrideFromEnv() {
	// Server
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}

	// Slack
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		c.Slack.BotToken = v
	}
	if v := os.Getenv("SLACK_SIGNING_SECRET"); v != "" {
		c.Slack.SigningSecret = v
	}

	// PagerDuty
	if v := os.Getenv("PAGERDUTY_API_TOKEN"); v != "" {
		c.PagerDuty.APIToken = v
	}
	if v := os.Getenv("PAGERDUTY_FROM_EMAIL"); v != "" {
		c.PagerDuty.FromEmail = v
	}
	if v := os.Getenv("PAGERDUTY_SERVICE_FILTER"); v != "" {
		c.PagerDuty.ServiceFilter = v
	}
	if v := os.Getenv("PAGERDUTY_NOOP"); v != "" {
		c.PagerDuty.Noop = v != "false" && v != "off"
	}
	if v := os.Getenv("PAGERDUTY_INTEGRATION_KEY"); v != "" {
		c.PagerDuty.IntegrationKey = v
	}
	if v := os.Getenv("PAGERDUTY_DEFAULT_USER_ID"); v != "" {
		c.PagerDuty.DefaultUserID = v
	}
	if v := os.Getenv("PAGERDUTY_SCHEDULES"); v != "" {
		c.PagerDuty.AllowedSchedules = strings.Split(v, ",")
	}
	if v := os.Getenv("PAGERDUTY_DEFAULT_SCHEDULE"); v != "" {
		c.PagerDuty.DefaultSchedule = v
	}
	if v := os.Getenv("PAGERDUTY_TEST_EMAIL"); v != "" {
		c.PagerDuty.TestEmail = v
	}
	if v := os.Getenv("PAGERDUTY_RECONCILE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PagerDuty.ReconcileDelay = d
		}
	}
	if v := os.Getenv("PAGERDUTY_RECONCILE_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PagerDuty.ReconcileRetries = n
		}
	}

	// Relay
	if v := os.Getenv("PAGERDUTY_ROOM"); v != "" {
		c.Relay.Room = v
	}
	if v := os.Getenv("PAGERDUTY_ENDPOINT"); v != "" {
		c.Relay.WebhookPath = v
	}
	if v := os.Getenv("PAGERDUTY_WEBHOOK_SECRET"); v != "" {
		c.Relay.WebhookSecret = v
	}

	// Logging
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	// Storage
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("SQLITE_DATABASE_PATH"); v != "" {
		c.Storage.SQLite.Path = v
	}
	if v := os.Getenv("MYSQL_HOST"); v != "" {
		c.Storage.MySQL.Host = v
	}
	if v := os.Getenv("MYSQL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Storage.MySQL.Port = port
		}
	}
	if v := os.Getenv("MYSQL_DATABASE"); v != "" {
		c.Storage.MySQL.Database = v
	}
	if v := os.Getenv("MYSQL_USERNAME"); v != "" {
		c.Storage.MySQL.Username = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		c.Storage.MySQL.Password = v
	}
}

// applyDefaults sets default values for unset config options.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	if c.Relay.WebhookPath == "" {
		c.Relay.WebhookPath = "/hook"
	}

	if c.PagerDuty.ReconcileDelay == 0 {
		c.PagerDuty.ReconcileDelay = 10 * time.Second
	}
	if c.PagerDuty.ReconcileRetries == 0 {
		c.PagerDuty.ReconcileRetries = 3
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "memory"
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "./data/pagerbot.db"
	}
	if c.Storage.MySQL.Port == 0 {
		c.Storage.MySQL.Port = 3306
	}
	if c.Storage.MySQL.Pool.MaxOpenConns == 0 {
		c.Storage.MySQL.Pool.MaxOpenConns = 25
	}
	if c.Storage.MySQL.Pool.MaxIdleConns == 0 {
		c.Storage.MySQL.Pool.MaxIdleConns = 5
	}
	if c.Storage.MySQL.Pool.ConnMaxLifetime == 0 {
		c.Storage.MySQL.Pool.ConnMaxLifetime = 3 * time.Minute
	}
}

// validate checks that required configuration is present.
func (c *Config) validate() error {
	if c.Slack.BotToken == "" {
		return fmt.Errorf("slack.bot_token is required")
	}

	if c.PagerDuty.APIToken == "" {
		return fmt.Errorf("pagerduty.api_token is required")
	}
	if c.PagerDuty.FromEmail == "" {
		return fmt.Errorf("pagerduty.from_email is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	validStorageTypes := map[string]bool{"memory": true, "sqlite": true, "mysql": true}
	if !validStorageTypes[strings.ToLower(c.Storage.Type)] {
		return fmt.Errorf("invalid storage type: %s (must be memory, sqlite, or mysql)", c.Storage.Type)
	}

	if strings.ToLower(c.Storage.Type) == "mysql" {
		if c.Storage.MySQL.Host == "" {
			return fmt.Errorf("storage.mysql.host is required when storage type is mysql")
		}
		if c.Storage.MySQL.Database == "" {
			return fmt.Errorf("storage.mysql.database is required when storage type is mysql")
		}
		if c.Storage.MySQL.Username == "" {
			return fmt.Errorf("storage.mysql.username is required when storage type is mysql")
		}
	}

	return nil
}
