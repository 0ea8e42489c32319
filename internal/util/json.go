package util

import (
	"encoding/json"
	"net/http"

	"github.com/shopmesh/storefront/internal/apierr"
)

func ParseJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(dest)
}

func JSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Success writes the uniform success envelope, merging payload fields in.
func Success(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	JSONResponse(w, status, body)
}

// ErrorResponse converts err into the uniform error envelope using the
// apierr taxonomy for the status code.
func ErrorResponse(w http.ResponseWriter, err error) {
	JSONResponse(w, apierr.Status(err), map[string]any{
		"success": false,
		"error":   apierr.PublicMessage(err),
	})
}
