package main

import (
	"net/http"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/database"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/ingest"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/metrics"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/modes"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/timeline"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// RouteManager handles all API routes
type RouteManager struct {
	store          database.Store
	gateway        *ingest.Gateway
	reconciler     *timeline.Reconciler
	broadcaster    *modes.Broadcaster
	video          http.Handler
	metrics        *metrics.Metrics
	logger         *zap.Logger
	allowedOrigins []string
	upgrader       websocket.Upgrader
	Router         *mux.Router
}

// RouteDeps groups the components served by the router
type RouteDeps struct {
	Store          database.Store
	Gateway        *ingest.Gateway
	Reconciler     *timeline.Reconciler
	Broadcaster    *modes.Broadcaster
	Video          http.Handler
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	AllowedOrigins []string
}

// NewRouteManager creates a new RouteManager instance
func NewRouteManager(deps RouteDeps) *RouteManager {
	rm := &RouteManager{
		store:          deps.Store,
		gateway:        deps.Gateway,
		reconciler:     deps.Reconciler,
		broadcaster:    deps.Broadcaster,
		video:          deps.Video,
		metrics:        deps.Metrics,
		logger:         deps.Logger,
		allowedOrigins: deps.AllowedOrigins,
		Router:         mux.NewRouter(),
	}
	rm.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     rm.checkOrigin,
	}
	return rm
}

// Setup configures all API routes
func (rm *RouteManager) Setup() {
	r := rm.Router
	r.Use(rm.corsMiddleware)
	r.Use(rm.loggingMiddleware)

	// Global OPTIONS handler - catches all preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.HandleFunc("/health", rm.healthHandler).Methods("GET")
	if rm.metrics != nil {
		r.Handle("/metrics", rm.metrics.Handler()).Methods("GET")
	}

	// Dynamic ingestion endpoints
	rm.setupIngestEndpoints(r)

	// Readings and timelines
	r.HandleFunc("/shocks", rm.getShocksHandler).Methods("GET")
	r.HandleFunc("/shocks/{sensorId}", rm.getShocksHandler).Methods("GET")
	r.HandleFunc("/sensors", rm.getSensorsHandler).Methods("GET")
	r.HandleFunc("/sensor_data/{sensorId}", rm.getSensorDataHandler).Methods("GET")
	r.HandleFunc("/sensor_data/{sensorId}/export", rm.exportSensorDataHandler).Methods("GET")

	// Modes
	r.HandleFunc("/current_mode", rm.currentModeHandler).Methods("GET")
	r.HandleFunc("/available_modes", rm.availableModesHandler).Methods("GET")
	r.HandleFunc("/change_mode", rm.changeModeHandler).Methods("POST")
	r.HandleFunc("/modes/ws", rm.modesWebsocketHandler).Methods("GET")

	// Video relay
	if rm.video != nil {
		r.Handle("/video_feed", rm.video).Methods("GET")
	}
}

// setupIngestEndpoints registers one endpoint per registered reading kind
func (rm *RouteManager) setupIngestEndpoints(r *mux.Router) {
	for _, v := range rm.gateway.Registry().All() {
		rm.logger.Info("Registering ingestion endpoint",
			zap.String("endpoint", v.Endpoint()),
			zap.String("kind", string(v.Kind())),
		)
		r.HandleFunc(v.Endpoint(), rm.ingestHandler(v.Kind())).Methods("POST")
	}
}
