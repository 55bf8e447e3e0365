// Package handler exposes the marketplace HTTP API: catalog management,
// cart projection, checkout and the payment webhook. Every endpoint speaks
// JSON; errors use the envelope written by ErrorResponse.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/feriaverde/marketplace/internal/domain"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Errorf(domain.EINVALID, "handler.decodeJSON", "Invalid JSON body")
	}
	return nil
}
