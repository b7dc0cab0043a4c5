package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/account-api/internal/usecase"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeValidationError(w http.ResponseWriter, details []string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:   "invalid request payload",
		Details: details,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, payload any) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}

	return true
}

// writeUsecaseError maps usecase sentinels onto stable HTTP responses.
// Anything unrecognized is logged and surfaced as an opaque 500.
func writeUsecaseError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmailTaken),
		errors.Is(err, usecase.ErrUsernameTaken),
		errors.Is(err, usecase.ErrAlreadyVerified),
		errors.Is(err, usecase.ErrDeletionInProgress),
		errors.Is(err, usecase.ErrNoDeletionRequest),
		errors.Is(err, usecase.ErrNotBlocked):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidRefreshToken),
		errors.Is(err, usecase.ErrWrongPassword):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, usecase.ErrEmailNotVerified),
		errors.Is(err, usecase.ErrAccountDeactivated),
		errors.Is(err, usecase.ErrAccountBlocked):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, usecase.ErrAccountNotFound),
		errors.Is(err, usecase.ErrVerificationTokenInvalid),
		errors.Is(err, usecase.ErrResetTokenInvalid):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, usecase.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrEmailSendFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error().Err(err).Msg("unexpected usecase error")
		writeError(w, http.StatusInternalServerError, "something went wrong")
	}
}
