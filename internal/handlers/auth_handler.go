package handlers

import (
	"errors"
	"net/http"

	"product-review/internal/metrics"
	"product-review/internal/models"
	"product-review/internal/services"

	"github.com/rs/zerolog"
)

type AuthHandler struct {
	authService *services.AuthService
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

func NewAuthHandler(authService *services.AuthService, m *metrics.Metrics, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     m,
		logger:      logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			h.metrics.LoginAttempt(false)
		}
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	h.metrics.LoginAttempt(true)
	respondWithJSON(w, http.StatusOK, token.Response())
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.SignUp(r.Context(), req); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	h.metrics.SignUp()
	w.WriteHeader(http.StatusCreated)
}

func (h *AuthHandler) Roles(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, models.Roles())
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":   caller.UserID,
		"username":  caller.Username,
		"role":      caller.Role,
		"role_name": caller.Role.String(),
	})
}
