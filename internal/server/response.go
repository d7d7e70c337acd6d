package server

import (
	"encoding/json"
	"net/http"

	"github.com/vango-dev/plop/internal/errors"
)

type modelResponse struct {
	IDs      []string `json:"ids"`
	Dragging bool     `json:"dragging"`
	Renders  int      `json:"renders"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusOf maps error codes to HTTP statuses.
func statusOf(pe *errors.PlopError) int {
	switch pe.Code {
	case "E101":
		return http.StatusNotFound
	case "E130", "E140":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	pe := errors.FromError(err, "")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusOf(pe))
	w.Write([]byte(pe.FormatJSON()))
}
