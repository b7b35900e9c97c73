package api

import (
	"net/http"

	"log/slog"

	"github.com/timearc/timearc/internal/models"
	"github.com/timearc/timearc/internal/tracking"
)

// ObservationHandler accepts raw window observations from the native observer
// process and feeds them into the pipeline.
type ObservationHandler struct {
	pipeline *tracking.Pipeline
	userID   string
	logger   *slog.Logger
}

// NewObservationHandler creates a new observation handler bound to the local
// user.
func NewObservationHandler(pipeline *tracking.Pipeline, userID string, logger *slog.Logger) *ObservationHandler {
	return &ObservationHandler{
		pipeline: pipeline,
		userID:   userID,
		logger:   logger,
	}
}

// Submit handles POST /api/observations. Returns the provisionally created
// event; its category fields fill in asynchronously.
func (h *ObservationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var obs models.Observation
	if err := decodeJSON(r, &obs); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if obs.OwnerName == "" {
		http.Error(w, "owner_name is required", http.StatusBadRequest)
		return
	}

	event, err := h.pipeline.ProcessEvent(r.Context(), h.userID, obs)
	if err != nil {
		h.logger.Error("failed to process observation", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// durationRequest is the body for duration updates and window-end calls.
type durationRequest struct {
	DurationMS int64 `json:"duration_ms"`
}

// UpdateDuration handles PUT /api/observations/:windowID/duration.
func (h *ObservationHandler) UpdateDuration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	windowID := pathSegment(r.URL.Path, "/api/observations/")
	if windowID == "" {
		http.Error(w, "Window ID required", http.StatusBadRequest)
		return
	}

	var req durationRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DurationMS < 0 {
		http.Error(w, "duration_ms must be non-negative", http.StatusBadRequest)
		return
	}

	if err := h.pipeline.UpdateDuration(r.Context(), windowID, req.DurationMS); err != nil {
		h.logger.Error("failed to update duration", "window_id", windowID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// End handles POST /api/observations/:windowID/end.
func (h *ObservationHandler) End(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	windowID := pathSegment(r.URL.Path, "/api/observations/")
	if windowID == "" {
		http.Error(w, "Window ID required", http.StatusBadRequest)
		return
	}

	var req durationRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	if err := h.pipeline.EndWindowEvent(r.Context(), windowID, req.DurationMS); err != nil {
		h.logger.Error("failed to end window event", "window_id", windowID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
