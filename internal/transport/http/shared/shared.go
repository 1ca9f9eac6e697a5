// Package shared centralizes JSON response envelopes so every handler speaks
// the same wire format.
package shared

import (
	"encoding/json"
	"net/http"

	derrors "coursegate/pkg/domain-errors"
)

// Response is the structured body used by all non-webhook endpoints.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into an HTTP status plus the
// structured failure body. Non-domain errors become opaque 500s.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, derrors.ToHTTPStatus(err), Response{
		Success: false,
		Message: derrors.MessageFor(err),
	})
}
