package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/oncallhq/pagerbot/internal/infrastructure/config"
)

// ReloadHandler handles configuration reload requests.
type ReloadHandler struct {
	configManager *config.Manager
	logger        *slog.Logger
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(cm *config.Manager, logger *slog.Logger) *ReloadHandler {
	return &ReloadHandler{
		configManager: cm,
		logger:        logger,
	}
}

// ServeHTTP handles POST /-/reload requests.
func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.configManager.TryReload(); err != nil {
		if errors.Is(err, config.ErrRequiresRestart) {
			// Static config change, log but still return 200
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Configuration change requires restart\n"))
			return
		}

		h.logger.Error("manual reload failed", "error", err)
		http.Error(w, "Configuration reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Configuration reloaded successfully\n"))
}
