package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/skill-forge/skillforge-lms/internal/auth"
	"github.com/skill-forge/skillforge-lms/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps domain errors to status codes; everything unrecognized is a
// bad gateway since it came from a collaborator.
func writeErr(w http.ResponseWriter, err error) {
	var (
		ve *quiz.ValidationError
		nf *quiz.NotFoundError
		pe *quiz.PersistenceError
		ae *auth.Error
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error(), "field": ve.Field})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
	case errors.As(err, &ae):
		body := map[string]string{"error": ae.Error()}
		if ae.Remediation != "" {
			body["remediation"] = ae.Remediation
		}
		writeJSON(w, http.StatusUnauthorized, body)
	case errors.As(err, &pe):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": pe.Error()})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}
