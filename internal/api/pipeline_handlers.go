package api

import (
	"net/http"

	"log/slog"

	"github.com/timearc/timearc/internal/categorize"
	"github.com/timearc/timearc/internal/tracking"
)

// PipelineHandler exposes categorization pipeline introspection and controls.
type PipelineHandler struct {
	pipeline *tracking.Pipeline
	cache    *categorize.ActivityCache
	logger   *slog.Logger
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(pipeline *tracking.Pipeline, cache *categorize.ActivityCache, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipeline: pipeline,
		cache:    cache,
		logger:   logger,
	}
}

// Status handles GET /api/pipeline/status.
func (h *PipelineHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"queue_pending":  h.pipeline.QueuePending(),
		"queue_running":  h.pipeline.QueueRunning(),
		"active_windows": h.pipeline.ActiveCount(),
		"cache_entries":  h.cache.Len(),
	})
}

// ClearQueue handles POST /api/pipeline/queue/clear, dropping all pending
// categorization jobs. In-flight jobs run to completion.
func (h *PipelineHandler) ClearQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.pipeline.ClearQueue()
	h.logger.Info("categorization queue cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
