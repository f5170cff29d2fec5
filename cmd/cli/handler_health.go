package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// connectionMonitor is implemented by stores that track connection health in the background
type connectionMonitor interface {
	IsConnectionHealthy() bool
}

// healthHandler returns server health status
func (rm *RouteManager) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:    "ok",
		Database:  "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	if m, ok := rm.store.(connectionMonitor); ok && !m.IsConnectionHealthy() {
		rm.logger.Warn("Database connection marked unhealthy by background check")
		resp.Status = "degraded"
		resp.Database = "background check failed"
		status = http.StatusServiceUnavailable
	} else if err := rm.store.Ping(ctx); err != nil {
		rm.logger.Warn("Health check failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Database = err.Error()
		status = http.StatusServiceUnavailable
	}

	rm.writeJSON(w, status, resp)
}
