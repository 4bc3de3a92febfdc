package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/oculus/oculus/internal/config"
	"github.com/oculus/oculus/internal/models"
	"github.com/oculus/oculus/internal/store"
	"github.com/oculus/oculus/internal/tracker"
	"github.com/oculus/oculus/pkg/window"
)

// Focuser applies focus changes
type Focuser interface {
	Focus(ctx context.Context, windowID int64) (*tracker.Result, error)
}

// StateLoader reads the session document
type StateLoader interface {
	Load(ctx context.Context) (*models.SessionsData, error)
}

type Handler struct {
	config  *config.Config
	tracker Focuser
	state   StateLoader
	backend string
	logger  zerolog.Logger
	started time.Time
}

func NewHandler(cfg *config.Config, t Focuser, state StateLoader, backend string, logger zerolog.Logger) *Handler {
	return &Handler{
		config:  cfg,
		tracker: t,
		state:   state,
		backend: backend,
		logger:  logger,
		started: time.Now(),
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/focus", h.handleFocus)
	mux.HandleFunc("/api/current", h.handleCurrent)
	mux.HandleFunc("/api/status", h.handleStatus)

	mux.HandleFunc("/health", h.handleHealth)
}

type focusRequest struct {
	WindowID *int64 `json:"window_id"`
}

type errorResponse struct {
	Error  string          `json:"error"`
	Kind   string          `json:"kind"`
	Result *tracker.Result `json:"result,omitempty"`
}

func (h *Handler) handleFocus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req focusRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.WindowID == nil {
		http.Error(w, "window_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.tracker.Focus(r.Context(), *req.WindowID)
	if err != nil {
		kind := tracker.ErrorKind(err)
		respondJSONStatus(w, h.logger, statusFor(err), errorResponse{
			Error:  err.Error(),
			Kind:   kind,
			Result: result,
		})
		return
	}

	respondJSON(w, h.logger, result)
}

// statusFor maps a Focus error to its HTTP status
func statusFor(err error) int {
	var notFound *window.WindowNotFoundError
	var unavailable *window.DirectoryUnavailableError
	var lockTimeout *store.LockTimeoutError
	var corrupt *store.CorruptStateError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &unavailable), errors.As(err, &lockTimeout):
		return http.StatusServiceUnavailable
	case errors.As(err, &corrupt):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := h.state.Load(r.Context())
	if err != nil {
		respondJSONStatus(w, h.logger, statusFor(err), errorResponse{
			Error: err.Error(),
			Kind:  tracker.ErrorKind(err),
		})
		return
	}

	respondJSON(w, h.logger, data.CurrentSession)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, h.logger, map[string]interface{}{
		"running":         true,
		"backend":         h.backend,
		"data_path":       h.config.DataPath(),
		"same_window":     h.config.Tracker.SameWindow,
		"archive_enabled": h.config.Archive.Enabled,
		"uptime":          time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, logger zerolog.Logger, data interface{}) {
	respondJSONStatus(w, logger, http.StatusOK, data)
}

func respondJSONStatus(w http.ResponseWriter, logger zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("Error encoding JSON")
	}
}
