package api

import (
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/timearc/timearc/internal/auth"
	"github.com/timearc/timearc/internal/categorize"
	"github.com/timearc/timearc/internal/config"
	"github.com/timearc/timearc/internal/models"
	"github.com/timearc/timearc/internal/tracking"
)

// Deps collects everything the API surface needs.
type Deps struct {
	Pipeline *tracking.Pipeline
	Cache    *categorize.ActivityCache
	AI       *categorize.AICategorizer

	Events     models.EventRepository
	Categories models.CategoryRepository
	Settings   models.SettingsRepository
	Users      models.UserRepository

	UserID         string
	AuthConfig     config.AuthConfig
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// SetupRoutes configures all API routes. Reads are public on the local
// loopback API; every mutating route and every route touching credentials
// sits behind the JWT middleware.
func SetupRoutes(mux *http.ServeMux, deps Deps) {
	authHandler := NewAuthHandler(deps.AuthConfig, deps.Users, deps.Logger)
	obsHandler := NewObservationHandler(deps.Pipeline, deps.UserID, deps.Logger)
	eventHandler := NewEventHandler(deps.Events, deps.Pipeline, deps.UserID, deps.Logger)
	categoryHandler := NewCategoryHandler(deps.Categories, deps.AI, deps.UserID, deps.Logger)
	settingsHandler := NewSettingsHandler(deps.Settings, deps.Users, deps.UserID, deps.Logger)
	providerHandler := NewProviderHandler(deps.Settings, deps.RequestTimeout, deps.Logger)
	pipelineHandler := NewPipelineHandler(deps.Pipeline, deps.Cache, deps.Logger)

	authMiddleware := auth.Middleware(deps.AuthConfig)
	authed := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	// Authentication routes
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.Handle("/api/auth/validate", authed(authHandler.ValidateToken))

	// Observation ingest (the native observer authenticates like the UI)
	mux.Handle("/api/observations", authed(obsHandler.Submit))
	mux.Handle("/api/observations/", authed(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/duration"):
			obsHandler.UpdateDuration(w, r)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/end"):
			obsHandler.End(w, r)
		default:
			http.Error(w, "Not found", http.StatusNotFound)
		}
	}))

	// Event routes (public for reading)
	mux.HandleFunc("/api/events", eventHandler.List)
	mux.HandleFunc("/api/events/", func(w http.ResponseWriter, r *http.Request) {
		if corsPreflight(w, r) {
			return
		}
		if r.URL.Path == "/api/events/recategorize" {
			authed(eventHandler.BulkRecategorize).ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/category") {
			authed(eventHandler.Recategorize).ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodDelete {
			authed(eventHandler.Delete).ServeHTTP(w, r)
			return
		}
		eventHandler.Get(w, r)
	})

	// Category routes
	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		if corsPreflight(w, r) {
			return
		}
		switch r.Method {
		case http.MethodGet:
			categoryHandler.List(w, r)
		case http.MethodPost:
			authed(categoryHandler.Create).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/categories/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/categories/" {
			http.NotFound(w, r)
			return
		}
		if corsPreflight(w, r) {
			return
		}
		switch {
		case r.URL.Path == "/api/categories/suggestions":
			authed(categoryHandler.Suggest).ServeHTTP(w, r)
		case r.URL.Path == "/api/categories/suggest-emoji":
			authed(categoryHandler.SuggestEmoji).ServeHTTP(w, r)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/archive"):
			authed(categoryHandler.Archive).ServeHTTP(w, r)
		case r.Method == http.MethodGet:
			categoryHandler.Get(w, r)
		case r.Method == http.MethodPut:
			authed(categoryHandler.Update).ServeHTTP(w, r)
		case r.Method == http.MethodDelete:
			authed(categoryHandler.Delete).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Settings routes (contain provider credentials, so reads require auth too)
	mux.Handle("/api/settings", authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			settingsHandler.Get(w, r)
		case http.MethodPut:
			settingsHandler.Update(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// Local user routes
	mux.HandleFunc("/api/user", func(w http.ResponseWriter, r *http.Request) {
		if corsPreflight(w, r) {
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		settingsHandler.GetUser(w, r)
	})
	mux.Handle("/api/user/goals", authed(settingsHandler.UpdateGoals))

	// AI provider routes
	mux.Handle("/api/providers/models", authed(providerHandler.ListModels))
	mux.Handle("/api/providers/test", authed(providerHandler.Test))
	mux.Handle("/api/providers/pull", authed(providerHandler.Pull))

	// Pipeline introspection
	mux.HandleFunc("/api/pipeline/status", pipelineHandler.Status)
	mux.Handle("/api/pipeline/queue/clear", authed(pipelineHandler.ClearQueue))

	// CORS preflight fallback for anything not matched above
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if corsPreflight(w, r) {
			return
		}
		http.NotFound(w, r)
	})
}

// corsPreflight answers OPTIONS requests and reports whether the request was
// handled.
func corsPreflight(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodOptions {
		return false
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.WriteHeader(http.StatusOK)
	return true
}
