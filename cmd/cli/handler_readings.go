package main

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/timeline"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// getShocksHandler returns shock records, optionally for one sensor
func (rm *RouteManager) getShocksHandler(w http.ResponseWriter, r *http.Request) {
	sensorID := mux.Vars(r)["sensorId"]

	shocks, err := rm.store.GetShockReadings(r.Context(), sensorID)
	if err != nil {
		rm.logger.Error("Failed to query shocks", zap.String("sensor_id", sensorID), zap.Error(err))
		rm.writeError(w, http.StatusInternalServerError, "Failed to query shocks")
		return
	}
	if shocks == nil {
		shocks = []models.ShockReading{}
	}

	rm.writeJSON(w, http.StatusOK, shocks)
}

// getSensorsHandler returns every sensor id seen by either reading kind
func (rm *RouteManager) getSensorsHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := rm.store.GetSensorIDs(r.Context())
	if err != nil {
		rm.logger.Error("Failed to query sensors", zap.Error(err))
		rm.writeError(w, http.StatusInternalServerError, "Failed to query sensors")
		return
	}
	if ids == nil {
		ids = []string{}
	}

	rm.writeJSON(w, http.StatusOK, ids)
}

// getSensorDataHandler returns the merged timeline of one sensor
func (rm *RouteManager) getSensorDataHandler(w http.ResponseWriter, r *http.Request) {
	sensorID := mux.Vars(r)["sensorId"]

	points, err := rm.reconciler.Reconcile(r.Context(), sensorID)
	if err != nil {
		rm.logger.Error("Failed to build timeline", zap.String("sensor_id", sensorID), zap.Error(err))
		rm.writeError(w, http.StatusInternalServerError, "Failed to build timeline")
		return
	}

	rm.writeJSON(w, http.StatusOK, points)
}

// exportSensorDataHandler serves the timeline of one sensor as an xlsx workbook
func (rm *RouteManager) exportSensorDataHandler(w http.ResponseWriter, r *http.Request) {
	sensorID := mux.Vars(r)["sensorId"]

	points, err := rm.reconciler.Reconcile(r.Context(), sensorID)
	if err != nil {
		rm.logger.Error("Failed to build timeline", zap.String("sensor_id", sensorID), zap.Error(err))
		rm.writeError(w, http.StatusInternalServerError, "Failed to build timeline")
		return
	}

	var buf bytes.Buffer
	if err := timeline.WriteWorkbook(&buf, sensorID, points); err != nil {
		rm.logger.Error("Failed to render workbook", zap.String("sensor_id", sensorID), zap.Error(err))
		rm.writeError(w, http.StatusInternalServerError, "Failed to render workbook")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "timeline_"+sensorID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
