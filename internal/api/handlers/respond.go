package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/pkg/logger"
	"github.com/wonny/aktietipset/backend/pkg/validation"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondValidation reports a failed payload field by field
func respondValidation(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: "invalid request"}
	var verr *validation.Error
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	respondJSON(w, http.StatusBadRequest, resp)
}

// StatusForError maps domain errors onto HTTP status codes
func StatusForError(err error) int {
	switch {
	case errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrTransientUpstream):
		return http.StatusServiceUnavailable
	case errors.Is(err, contracts.ErrClientRequest), errors.Is(err, contracts.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, contracts.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondProviderError logs and reports a failed provider-backed operation
func respondProviderError(w http.ResponseWriter, log *logger.Logger, op string, err error) {
	status := StatusForError(err)
	log.WithError(err).WithFields(map[string]interface{}{
		"op":     op,
		"status": status,
	}).Warn("Request failed")

	message := http.StatusText(status)
	switch status {
	case http.StatusServiceUnavailable:
		message = "Market data upstream is temporarily unavailable"
	case http.StatusBadGateway:
		message = "Market data upstream returned an invalid response"
	case http.StatusGatewayTimeout:
		message = "Market data upstream timed out"
	}
	respondError(w, status, message)
}

// respondNoProvider is used when no market data provider is configured
func respondNoProvider(w http.ResponseWriter) {
	respondError(w, http.StatusServiceUnavailable, "Market data provider is not configured")
}

// decodeJSON reads a JSON body, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
