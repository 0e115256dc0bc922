package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"product-review/internal/middleware"
	"product-review/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	defaultLimit   = 50
	maxLimit       = 200
	maxRequestBody = 1 << 20
)

func respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	respondWithJSON(w, code, middleware.ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// respondWithServiceError maps a service error onto a status code. Clients
// only see messages built with models.Errorf; the full chain goes to the log.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	var status int
	var code, message string
	switch {
	case errors.Is(err, models.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", models.PublicMessage(err, "Resource not found")
	case errors.Is(err, models.ErrValidation):
		status, code, message = http.StatusBadRequest, "validation_failed", models.PublicMessage(err, "Invalid request")
	case errors.Is(err, models.ErrConflict):
		status, code, message = http.StatusConflict, "conflict", models.PublicMessage(err, "Request conflicts with existing data")
	case errors.Is(err, models.ErrInvalidCredentials):
		status, code, message = http.StatusUnauthorized, "authentication_failed", models.ErrInvalidCredentials.Error()
	case errors.Is(err, models.ErrForbidden):
		status, code, message = http.StatusForbidden, "forbidden", models.PublicMessage(err, "Access denied")
	default:
		logger.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		respondWithError(w, http.StatusInternalServerError, "internal_error", "An error occurred while processing your request")
		return
	}

	logger.Debug().
		Err(err).
		Str("request_id", middleware.GetRequestID(r)).
		Int("status", status).
		Msg("Request rejected")
	respondWithError(w, status, code, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "invalid_"+name, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}

func pagination(r *http.Request) (limit, offset int) {
	limit, offset = defaultLimit, 0
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = min(l, maxLimit)
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}
	return limit, offset
}

func identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := middleware.GetIdentity(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
	}
	return id, ok
}
