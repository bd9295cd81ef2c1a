package mux

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"pokerroom-server/pkg/poker/holdem"
	"pokerroom-server/pkg/room"
)

func decodeRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" && ct != "text/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("could not write JSON response")
	}
}

type errorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	var msg string

	if statusCode < 500 && err != nil {
		msg = err.Error()
	} else {
		msg = http.StatusText(statusCode)
	}

	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	writeJSON(w, statusCode, errorResponse{
		Message:    msg,
		StatusCode: statusCode,
	})
}

// writeCoordinatorError maps coordinator failures onto HTTP statuses.
// Rule errors are the caller's fault and are surfaced verbatim.
func writeCoordinatorError(w http.ResponseWriter, err error) {
	switch {
	case err == room.ErrRoomNotFound:
		writeJSONError(w, http.StatusNotFound, nil)
	case err == room.ErrNotCreator:
		writeJSONError(w, http.StatusForbidden, err)
	case holdem.IsRuleError(err):
		writeJSONError(w, http.StatusBadRequest, err)
	default:
		writeJSONError(w, http.StatusInternalServerError, err)
	}
}
