package api

import (
	"net/http"

	"log/slog"

	"github.com/timearc/timearc/internal/categorize"
	"github.com/timearc/timearc/internal/models"
)

// CategoryHandler manages the user's category list and the AI suggestion
// flows.
type CategoryHandler struct {
	categories models.CategoryRepository
	ai         *categorize.AICategorizer
	userID     string
	logger     *slog.Logger
}

// NewCategoryHandler creates a new category handler bound to the local user.
func NewCategoryHandler(categories models.CategoryRepository, ai *categorize.AICategorizer, userID string, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		ai:         ai,
		userID:     userID,
		logger:     logger,
	}
}

// List handles GET /api/categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListByUser(r.Context(), h.userID)
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}

	writeJSON(w, http.StatusOK, categories)
}

// categoryRequest is the mutable subset of a category accepted from the UI.
type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Emoji       string `json:"emoji"`
	Productive  bool   `json:"productive"`
	Archived    bool   `json:"archived"`
}

// Create handles POST /api/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	category := &models.Category{
		UserID:      h.userID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Emoji:       req.Emoji,
		Productive:  req.Productive,
	}
	if err := h.categories.Create(r.Context(), category); err != nil {
		h.logger.Error("failed to create category", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

// Get handles GET /api/categories/:id.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	categoryID := pathSegment(r.URL.Path, "/api/categories/")
	if categoryID == "" {
		http.Error(w, "Category ID required", http.StatusBadRequest)
		return
	}

	category, err := h.categories.GetByID(r.Context(), categoryID)
	if err != nil {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, category)
}

// Update handles PUT /api/categories/:id.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	categoryID := pathSegment(r.URL.Path, "/api/categories/")
	if categoryID == "" {
		http.Error(w, "Category ID required", http.StatusBadRequest)
		return
	}

	category, err := h.categories.GetByID(r.Context(), categoryID)
	if err != nil {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	category.Name = req.Name
	category.Description = req.Description
	category.Color = req.Color
	category.Emoji = req.Emoji
	category.Productive = req.Productive
	category.Archived = req.Archived

	if err := h.categories.Update(r.Context(), category); err != nil {
		h.logger.Error("failed to update category", "category_id", categoryID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, category)
}

// Archive handles POST /api/categories/:id/archive. Archiving is the normal
// removal path; it preserves historical event references.
func (h *CategoryHandler) Archive(w http.ResponseWriter, r *http.Request) {
	categoryID := pathSegment(r.URL.Path, "/api/categories/")
	if categoryID == "" {
		http.Error(w, "Category ID required", http.StatusBadRequest)
		return
	}

	if err := h.categories.Archive(r.Context(), categoryID); err != nil {
		h.logger.Error("failed to archive category", "category_id", categoryID, "error", err)
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

// Delete handles DELETE /api/categories/:id. Hard delete; events referencing
// the category fall back to uncategorized.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	categoryID := pathSegment(r.URL.Path, "/api/categories/")
	if categoryID == "" {
		http.Error(w, "Category ID required", http.StatusBadRequest)
		return
	}

	if err := h.categories.Delete(r.Context(), categoryID); err != nil {
		h.logger.Error("failed to delete category", "category_id", categoryID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// suggestionsRequest carries the user's free-text goals.
type suggestionsRequest struct {
	Goals string `json:"goals"`
}

// Suggest handles POST /api/categories/suggestions: AI-generated category
// proposals from free-text goals. Nothing is persisted until the user accepts
// and creates them.
func (h *CategoryHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req suggestionsRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Goals == "" {
		http.Error(w, "goals is required", http.StatusBadRequest)
		return
	}

	suggestions := h.ai.SuggestCategories(r.Context(), req.Goals)
	if suggestions == nil {
		http.Error(w, "AI suggestions unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": suggestions})
}

// emojiRequest carries a category name/description pair.
type emojiRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SuggestEmoji handles POST /api/categories/suggest-emoji.
func (h *CategoryHandler) SuggestEmoji(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req emojiRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	emoji, ok := h.ai.SuggestEmoji(r.Context(), req.Name, req.Description)
	if !ok {
		http.Error(w, "AI suggestions unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"emoji": emoji})
}
