package api

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/timearc/timearc/internal/models"
	"github.com/timearc/timearc/internal/tracking"
)

// EventHandler serves recorded activity events and recategorization requests.
type EventHandler struct {
	events   models.EventRepository
	pipeline *tracking.Pipeline
	userID   string
	logger   *slog.Logger
}

// NewEventHandler creates a new event handler bound to the local user.
func NewEventHandler(events models.EventRepository, pipeline *tracking.Pipeline, userID string, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		events:   events,
		pipeline: pipeline,
		userID:   userID,
		logger:   logger,
	}
}

// EventsResponse wraps a list of events.
type EventsResponse struct {
	Events []models.ActivityEvent `json:"events"`
	Count  int                    `json:"count"`
	Start  time.Time              `json:"start"`
	End    time.Time              `json:"end"`
}

// List handles GET /api/events?start=RFC3339&end=RFC3339. Defaults to the
// last 24 hours.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)

	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "Invalid start timestamp (want RFC3339)", http.StatusBadRequest)
			return
		}
		start = parsed
	}
	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "Invalid end timestamp (want RFC3339)", http.StatusBadRequest)
			return
		}
		end = parsed
	}
	if end.Before(start) {
		http.Error(w, "end must be after start", http.StatusBadRequest)
		return
	}

	events, err := h.events.ListByTimeRange(r.Context(), h.userID, start, end)
	if err != nil {
		h.logger.Error("failed to list events", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, EventsResponse{
		Events: events,
		Count:  len(events),
		Start:  start,
		End:    end,
	})
}

// Get handles GET /api/events/:id.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventID := pathSegment(r.URL.Path, "/api/events/")
	if eventID == "" {
		http.Error(w, "Event ID required", http.StatusBadRequest)
		return
	}

	event, err := h.events.GetByID(r.Context(), eventID)
	if err != nil {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// recategorizeRequest is the body for single-event recategorization.
type recategorizeRequest struct {
	CategoryID string `json:"category_id"`
}

// Recategorize handles PUT /api/events/:id/category.
func (h *EventHandler) Recategorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventID := pathSegment(r.URL.Path, "/api/events/")
	if eventID == "" {
		http.Error(w, "Event ID required", http.StatusBadRequest)
		return
	}

	var req recategorizeRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CategoryID == "" {
		http.Error(w, "category_id is required", http.StatusBadRequest)
		return
	}

	event, err := h.pipeline.RecategorizeEvent(r.Context(), eventID, req.CategoryID)
	if err != nil {
		h.logger.Error("failed to recategorize event", "event_id", eventID, "error", err)
		http.Error(w, "Failed to recategorize event", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// bulkRecategorizeRequest is the body for identifier-based recategorization.
type bulkRecategorizeRequest struct {
	Identifier string    `json:"identifier"`
	ItemType   string    `json:"item_type"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	CategoryID string    `json:"category_id"`
}

func (req *bulkRecategorizeRequest) validate() error {
	if req.Identifier == "" {
		return ValidationError{Field: "identifier", Message: "identifier is required"}
	}
	if req.ItemType != string(models.ItemTypeApp) && req.ItemType != string(models.ItemTypeWebsite) {
		return ValidationError{Field: "item_type", Message: "item_type must be 'app' or 'website'"}
	}
	if req.CategoryID == "" {
		return ValidationError{Field: "category_id", Message: "category_id is required"}
	}
	if req.Start.IsZero() || req.End.IsZero() || req.End.Before(req.Start) {
		return ValidationError{Field: "start", Message: "a valid start/end range is required"}
	}
	return nil
}

// BulkRecategorize handles POST /api/events/recategorize.
func (h *EventHandler) BulkRecategorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req bulkRecategorizeRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	count, err := h.pipeline.RecategorizeEventsByIdentifier(
		r.Context(), h.userID, req.Identifier,
		models.RecategorizeItemType(req.ItemType),
		req.Start, req.End, req.CategoryID)
	if err != nil {
		h.logger.Error("failed bulk recategorization", "identifier", req.Identifier, "error", err)
		http.Error(w, "Failed to recategorize events", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"updated": count})
}

// Delete handles DELETE /api/events/:id.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventID := pathSegment(r.URL.Path, "/api/events/")
	if eventID == "" {
		http.Error(w, "Event ID required", http.StatusBadRequest)
		return
	}

	if err := h.events.Delete(r.Context(), eventID); err != nil {
		h.logger.Error("failed to delete event", "event_id", eventID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
