package main

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

func (rm *RouteManager) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rm.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

// writeMessage answers with a {"message": ...} body
func (rm *RouteManager) writeMessage(w http.ResponseWriter, status int, message string) {
	rm.writeJSON(w, status, map[string]string{"message": message})
}

// writeError answers with an {"error": ...} body
func (rm *RouteManager) writeError(w http.ResponseWriter, status int, message string) {
	rm.writeJSON(w, status, map[string]string{"error": message})
}
