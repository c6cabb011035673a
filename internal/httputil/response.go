package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/redmonkez12/todo-api/internal/apperr"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondError sends a JSON error response with the given message and status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// RespondErrorWithCode sends a JSON error response with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Code: code}, statusCode)
}

// StatusFor maps a categorized domain error to an HTTP status and response
// code. Uncategorized errors are internal errors.
func StatusFor(err error) (int, string) {
	switch apperr.CodeOf(err) {
	case apperr.CodeValidation:
		return http.StatusBadRequest, CodeValidationFailed
	case apperr.CodeNotFound:
		return http.StatusNotFound, CodeNotFound
	case apperr.CodeConflict:
		return http.StatusConflict, CodeConflict
	case apperr.CodeCapacity:
		return http.StatusInternalServerError, CodeCapacityExhausted
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}

// RespondAppError writes err using StatusFor. Internal errors get a generic
// message so store details never reach the client.
func RespondAppError(w http.ResponseWriter, err error, internalMessage string) {
	status, code := StatusFor(err)
	message := err.Error()
	if code == CodeInternalError {
		message = internalMessage
	}
	RespondErrorWithCode(w, message, code, status)
}
