package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"partyrooms/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service-level sentinel errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound), errors.Is(err, service.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidNickname),
		errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrInvalidType),
		errors.Is(err, service.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNicknameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrGameAlreadyStarted),
		errors.Is(err, service.ErrGameNotStarted),
		errors.Is(err, service.ErrNotYourTurn),
		errors.Is(err, service.ErrNotHost),
		errors.Is(err, service.ErrNoQuestionPending),
		errors.Is(err, service.ErrWrongState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrCommitConflict):
		// Transient; the client should retry.
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
