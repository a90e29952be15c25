// Package httputil writes JSON responses and maps domain errors to them.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"refexcms/internal/domain"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// RespondJSON writes data as JSON with the given status. The payload is
// marshaled before any header is written so an encoding failure still
// produces a clean 500.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Error("encode response failed", "error", err)
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondError writes {"error": message} with the given status.
func RespondError(w http.ResponseWriter, status int, message string) {
	writeError(w, status, ErrorBody{Error: message})
}

// RespondValidation writes a 400 with a per-field problem map.
func RespondValidation(w http.ResponseWriter, message string, fields map[string]string) {
	writeError(w, http.StatusBadRequest, ErrorBody{Error: message, Fields: fields})
}

// RespondDomainError maps err to its status code. Errors without a status
// are logged and answered with a generic 500 so internals never leak.
func RespondDomainError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		RespondValidation(w, ve.Message, ve.Fields)
		return
	}

	status := domain.StatusOf(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		RespondError(w, status, "internal server error")
		return
	}
	RespondError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, body ErrorBody) {
	payload, err := json.Marshal(body)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// DecodeJSON decodes the request body into v, rejecting trailing data.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
