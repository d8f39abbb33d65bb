package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

const maxBodyBytes = 1 << 20

// errorBody is the error payload of every JSON endpoint. Field is set for
// validation failures only.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case core.IsTransport(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Server-side failures are logged and their details
// are not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		body = errorBody{Error: ve.Err.Error(), Field: ve.Field}
	case status == http.StatusNotFound:
		body.Error = core.ErrNotFound.Error()
	case status >= 500:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err.Error(),
			log.FieldStatusCode, status,
			log.FieldPath, r.URL.Path)
		body.Error = http.StatusText(status)
	}
	writeJSON(w, status, body)
}

// readBody reads a bounded request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &core.ValidationError{Field: "body", Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}

// decodeBody reads and unmarshals a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &core.ValidationError{Field: "body", Err: errors.New("malformed JSON")}
	}
	return nil
}
