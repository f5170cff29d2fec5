package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/database"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/ingest"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"go.uber.org/zap"
)

const (
	msgNotJSON          = "Request must be JSON"
	msgTooLarge         = "Request body too large"
	msgStoreFailed      = "Failed to store reading"
	msgShockAccepted    = "Data received successfully"
	msgEnvironmentAdded = "Temperature and humidity data received successfully"
)

// maxPayloadBytes bounds a single sensor reading body
const maxPayloadBytes = 64 << 10

// successMessages holds the response text per reading kind
var successMessages = map[models.ReadingKind]string{
	models.KindShock:       msgShockAccepted,
	models.KindEnvironment: msgEnvironmentAdded,
}

// ingestHandler decodes a JSON body and hands it to the gateway
func (rm *RouteManager) ingestHandler(kind models.ReadingKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isJSON(r) {
			rm.writeMessage(w, http.StatusBadRequest, msgNotJSON)
			return
		}

		payload, err := ingest.DecodePayload(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				rm.writeMessage(w, http.StatusRequestEntityTooLarge, msgTooLarge)
				return
			}
			rm.writeMessage(w, http.StatusBadRequest, msgNotJSON)
			return
		}

		if _, err := rm.gateway.Ingest(r.Context(), kind, payload); err != nil {
			var ve *ingest.ValidationError
			switch {
			case errors.As(err, &ve):
				rm.writeMessage(w, http.StatusBadRequest, ve.Error())
			case database.IsPersistenceError(err):
				rm.writeMessage(w, http.StatusInternalServerError, msgStoreFailed)
			default:
				rm.logger.Error("Ingestion failed", zap.String("kind", string(kind)), zap.Error(err))
				rm.writeMessage(w, http.StatusInternalServerError, msgStoreFailed)
			}
			return
		}

		msg, ok := successMessages[kind]
		if !ok {
			msg = "Reading received successfully"
		}
		rm.writeMessage(w, http.StatusOK, msg)
	}
}

// isJSON reports whether the request declares a JSON body
func isJSON(r *http.Request) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}
