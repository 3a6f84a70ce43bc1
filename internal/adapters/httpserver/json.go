package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"tradepilot/internal/ports"
)

// writeJSON sends data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error": "failed to encode JSON response"}`, http.StatusInternalServerError)
	}
}

// writeError converts an internal error into a structured JSON error body,
// mapping the ports sentinels onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ports.ErrInvalidRequest), errors.Is(err, ports.ErrUnsupportedMode):
		return http.StatusBadRequest
	case errors.Is(err, ports.ErrSymbolNotFound):
		return http.StatusNotFound
	case errors.Is(err, ports.ErrMarketDataUnavailable), errors.Is(err, ports.ErrExchangeUnavailable),
		errors.Is(err, ports.ErrConnectionFailed):
		return http.StatusBadGateway
	case errors.Is(err, ports.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ports.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ports.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
