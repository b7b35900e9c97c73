package api

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/timearc/timearc/internal/auth"
	"github.com/timearc/timearc/internal/config"
	"github.com/timearc/timearc/internal/models"
)

// AuthHandler handles authentication requests for the local UI.
type AuthHandler struct {
	cfg    config.AuthConfig
	users  models.UserRepository
	logger *slog.Logger
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(cfg config.AuthConfig, users models.UserRepository, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:    cfg,
		users:  users,
		logger: logger,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
}

// Login handles POST /api/auth/login. The password is checked against the
// bcrypt hash stored on the local user record.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetLocal(r.Context())
	if err != nil {
		h.logger.Error("failed to load local user", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		h.logger.Warn("failed login attempt", "ip", r.RemoteAddr)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateToken(user.ID, h.cfg.JWTSecret, h.cfg.TokenDuration)
	if err != nil {
		h.logger.Error("failed to generate token", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("successful login", "ip", r.RemoteAddr)

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.cfg.TokenDuration),
		UserID:    user.ID,
	})
}

// ValidateToken handles GET /api/auth/validate. The middleware has already
// validated the token by the time this runs.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, _ := auth.GetUserIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":   true,
		"user_id": userID,
	})
}
