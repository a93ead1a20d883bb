package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/zapfield/conversation-intelligence/pkg/logger"
)

// writeJSON writes a JSON response. The status line is already out when
// encoding runs, so a failure can only be logged, not reported.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Global().Warn("failed to encode response body",
			zap.Int("status", status),
			zap.Error(err))
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
