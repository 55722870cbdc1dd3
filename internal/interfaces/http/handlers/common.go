// Common helper functions shared by the HTTP handlers.

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/probite-fr/probite/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeAppError maps application errors to HTTP responses using the typed
// error-code table.  Server-side causes are masked; the typed code survives
// so operators can still correlate with the logs.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status, ok := errors.ErrorCodeHTTPStatus[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	resp := ErrorResponse{Code: string(code), Message: err.Error()}
	if status >= http.StatusInternalServerError {
		resp.Message = http.StatusText(status)
	}
	writeJSON(w, status, resp)
}
