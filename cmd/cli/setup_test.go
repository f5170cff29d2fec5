package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/database"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/ingest"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/metrics"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/modes"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/relay"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/timeline"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// brokenStore fails every operation
type brokenStore struct{}

var errBroken = errors.New("database unavailable")

func (brokenStore) StoreShockReading(ctx context.Context, r *models.ShockReading) error {
	return &database.PersistenceError{Op: "store shock reading", Err: errBroken}
}

func (brokenStore) StoreEnvironmentReading(ctx context.Context, r *models.EnvironmentReading) error {
	return &database.PersistenceError{Op: "store environment reading", Err: errBroken}
}

func (brokenStore) GetShockReadings(ctx context.Context, sensorID string) ([]models.ShockReading, error) {
	return nil, errBroken
}

func (brokenStore) GetEnvironmentReadings(ctx context.Context, sensorID string) ([]models.EnvironmentReading, error) {
	return nil, errBroken
}

func (brokenStore) GetSensorIDs(ctx context.Context) ([]string, error) {
	return nil, errBroken
}

func (brokenStore) Ping(ctx context.Context) error { return errBroken }
func (brokenStore) Close() error                   { return nil }

// unhealthyStore answers pings but reports a failed background check
type unhealthyStore struct {
	*database.MemoryStore
}

func (unhealthyStore) IsConnectionHealthy() bool { return false }

type testServer struct {
	*httptest.Server
	store       database.Store
	broadcaster *modes.Broadcaster
}

func newTestRouteManager(t *testing.T, store database.Store, opts ...modes.Option) (*RouteManager, *modes.Broadcaster) {
	t.Helper()

	logger := zap.NewNop()
	m := metrics.New()

	broadcaster, err := modes.New(models.DefaultModeLabels, append([]modes.Option{modes.WithMetrics(m)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(broadcaster.Close)

	rm := NewRouteManager(RouteDeps{
		Store:          store,
		Gateway:        ingest.NewGateway(store, logger, ingest.WithMetrics(m)),
		Reconciler:     timeline.NewReconciler(store),
		Broadcaster:    broadcaster,
		Video:          relay.NewHub(relay.NewHTTPSource(""), relay.WithLogger(logger)),
		Metrics:        m,
		Logger:         logger,
		AllowedOrigins: []string{"http://localhost:5173"},
	})
	rm.Setup()
	return rm, broadcaster
}

// setupTestServer starts the full router on a memory store
func setupTestServer(t *testing.T, opts ...modes.Option) *testServer {
	t.Helper()

	store := database.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	rm, broadcaster := newTestRouteManager(t, store, opts...)
	srv := httptest.NewServer(rm.Router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, store: store, broadcaster: broadcaster}
}
