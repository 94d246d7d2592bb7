package config

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrRequiresRestart indicates the file change touches settings that are only
// read at startup (server, storage, credentials).
var ErrRequiresRestart = errors.New("configuration change requires restart")

// Manager owns the live configuration and supports reloading the dynamic
// subset (noop flag, schedule filters, default schedule, relay room and
// webhook secret) from disk. All other settings are static for the process
// lifetime.
type Manager struct {
	mu       sync.RWMutex
	path     string
	current  *Config
	onReload []func(*Config)
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
}

// NewManager creates a manager around an already loaded configuration.
func NewManager(path string, cfg *Config, logger *slog.Logger) *Manager {
	return &Manager{
		path:    path,
		current: cfg,
		logger:  logger,
	}
}

// Current returns the live configuration snapshot.
func (m *Manager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnReload registers a callback invoked after a successful reload.
func (m *Manager) OnReload(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReload = append(m.onReload, fn)
}

// TryReload re-reads the config file and swaps the dynamic subset.
// Static changes are rejected with ErrRequiresRestart and nothing is applied.
func (m *Manager) TryReload() error {
	fresh, err := Load(m.path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if !staticEqual(m.current, fresh) {
		m.mu.Unlock()
		return ErrRequiresRestart
	}

	updated := *m.current
	updated.PagerDuty.Noop = fresh.PagerDuty.Noop
	updated.PagerDuty.ServiceFilter = fresh.PagerDuty.ServiceFilter
	updated.PagerDuty.AllowedSchedules = fresh.PagerDuty.AllowedSchedules
	updated.PagerDuty.DefaultSchedule = fresh.PagerDuty.DefaultSchedule
	updated.PagerDuty.TestEmail = fresh.PagerDuty.TestEmail
	updated.Relay.Room = fresh.Relay.Room
	updated.Relay.WebhookSecret = fresh.Relay.WebhookSecret
	m.current = &updated
	callbacks := make([]func(*Config), len(m.onReload))
	copy(callbacks, m.onReload)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(&updated)
	}

	m.logger.Info("configuration reloaded",
		"noop", updated.PagerDuty.Noop,
		"default_schedule", updated.PagerDuty.DefaultSchedule,
	)
	return nil
}

// Watch follows the config file with fsnotify and reloads on write events.
// Call Close to stop watching.
func (m *Manager) Watch() error {
	if m.path == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(m.path); err != nil {
		w.Close()
		return err
	}
	m.watcher = w

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := m.TryReload(); err != nil {
					if errors.Is(err, ErrRequiresRestart) {
						m.logger.Warn("config file changed but change requires restart")
					} else {
						m.logger.Error("config reload failed", "error", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				m.logger.Error("config watcher error", "error", err)
			}
		}
	}()

	return nil
}

// Close stops the file watcher, if started.
func (m *Manager) Close() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

// staticEqual compares the settings that cannot be swapped at runtime.
func staticEqual(a, b *Config) bool {
	return a.Server == b.Server &&
		a.Storage == b.Storage &&
		a.Slack == b.Slack &&
		a.Relay.WebhookPath == b.Relay.WebhookPath &&
		a.Logging == b.Logging &&
		a.PagerDuty.APIToken == b.PagerDuty.APIToken &&
		a.PagerDuty.FromEmail == b.PagerDuty.FromEmail &&
		a.PagerDuty.IntegrationKey == b.PagerDuty.IntegrationKey &&
		a.PagerDuty.DefaultUserID == b.PagerDuty.DefaultUserID &&
		a.PagerDuty.ReconcileDelay == b.PagerDuty.ReconcileDelay &&
		a.PagerDuty.ReconcileRetries == b.PagerDuty.ReconcileRetries
}

// Accessors below read the live snapshot so values picked up by a reload are
// visible to in-flight workflows.

// TestEmail returns the fallback email used when a chat user has none.
func (m *Manager) TestEmail() string {
	return m.Current().PagerDuty.TestEmail
}

// DefaultUserID returns the PagerDuty user incidents are attributed to when
// the caller cannot be resolved.
func (m *Manager) DefaultUserID() string {
	return m.Current().PagerDuty.DefaultUserID
}

// DefaultSchedule returns the schedule paged by a bare trigger command.
func (m *Manager) DefaultSchedule() string {
	return m.Current().PagerDuty.DefaultSchedule
}

// AllowedSchedules returns the schedule IDs the on-call listing is limited
// to. Empty means no restriction.
func (m *Manager) AllowedSchedules() []string {
	return m.Current().PagerDuty.AllowedSchedules
}

// Room returns the chat channel webhook updates are posted to.
func (m *Manager) Room() string {
	return m.Current().Relay.Room
}

// WebhookSecret returns the current PagerDuty webhook signing secret.
// Read per request so reloads take effect without a restart.
func (m *Manager) WebhookSecret() string {
	return m.Current().Relay.WebhookSecret
}
