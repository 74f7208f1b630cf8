package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"secureview/internal/logger"
	"secureview/internal/service"
	"secureview/internal/session"
)

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func errorStatus(err error) int {
	var verr *session.ValidationError
	var saveErr *session.DraftSaveError
	var subErr *session.SubmissionError

	switch {
	case errors.As(err, &verr), errors.Is(err, session.ErrIndexOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrAlreadySubmitted),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, session.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.As(err, &subErr):
		return http.StatusBadGateway
	case errors.As(err, &saveErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, service.ErrInsightsNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case service.IsAuthError(err):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps domain errors onto HTTP statuses. Internal errors are logged and
// reported without detail.
func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	status := errorStatus(err)
	switch status {
	case http.StatusUnprocessableEntity:
		var verr *session.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, status, map[string]interface{}{
				"error":   verr.Reason,
				"missing": verr.Missing,
			})
			return
		}
	case http.StatusBadGateway:
		writeError(w, status, "submission failed, your answers are kept; please retry")
		return
	case http.StatusServiceUnavailable:
		writeError(w, status, "autosave failed, keep editing and retry")
		return
	case http.StatusInternalServerError:
		log.Error("request failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
