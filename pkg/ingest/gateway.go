package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/metrics"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"go.uber.org/zap"
)

// Store is the append side of the record store
type Store interface {
	StoreShockReading(ctx context.Context, r *models.ShockReading) error
	StoreEnvironmentReading(ctx context.Context, r *models.EnvironmentReading) error
}

// Publisher receives every committed reading
type Publisher interface {
	Publish(ctx context.Context, r models.Reading) error
}

// Accepted acknowledges a committed reading
type Accepted struct {
	Kind      models.ReadingKind
	SensorID  string
	Timestamp time.Time
}

// Gateway validates sensor payloads and appends them to the store
type Gateway struct {
	store     Store
	registry  *Registry
	publisher Publisher
	metrics   *metrics.Metrics
	clock     *monotonicClock
	logger    *zap.Logger
}

// Option configures a Gateway
type Option func(*Gateway)

// WithRegistry replaces the default validator registry
func WithRegistry(r *Registry) Option {
	return func(g *Gateway) { g.registry = r }
}

// WithPublisher forwards committed readings to p
func WithPublisher(p Publisher) Option {
	return func(g *Gateway) { g.publisher = p }
}

// WithMetrics records ingestion counters on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithClock sets the wall clock used for default timestamps
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.clock = newMonotonicClock(now) }
}

// NewGateway creates a gateway writing to store
func NewGateway(store Store, logger *zap.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		store:    store,
		registry: DefaultRegistry(),
		clock:    newMonotonicClock(time.Now),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Registry returns the validators known to the gateway
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// Ingest validates payload as a reading of kind and appends it.
// Nothing is written unless every required field is valid.
func (g *Gateway) Ingest(ctx context.Context, kind models.ReadingKind, payload map[string]any) (Accepted, error) {
	validator, ok := g.registry.Get(kind)
	if !ok {
		return Accepted{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	reading, err := validator.Decode(payload, g.clock.Now())
	if err != nil {
		g.reject(kind, payload, err)
		return Accepted{}, err
	}

	start := time.Now()
	switch r := reading.(type) {
	case *models.ShockReading:
		err = g.store.StoreShockReading(ctx, r)
	case *models.EnvironmentReading:
		err = g.store.StoreEnvironmentReading(ctx, r)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownKind, reading)
	}
	if g.metrics != nil {
		g.metrics.StoreLatency.WithLabelValues("store_" + string(kind)).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		g.reject(kind, payload, err)
		return Accepted{}, err
	}

	if g.publisher != nil {
		if err := g.publisher.Publish(ctx, reading); err != nil {
			g.logger.Warn("Failed to publish reading",
				zap.String("kind", string(kind)),
				zap.String("sensor_id", reading.Sensor()),
				zap.Error(err),
			)
		}
	}

	if g.metrics != nil {
		g.metrics.ReadingsIngested.WithLabelValues(string(kind)).Inc()
	}
	g.logger.Info("Reading accepted",
		zap.String("kind", string(kind)),
		zap.String("sensor_id", reading.Sensor()),
		zap.Time("timestamp", reading.At()),
		zap.Any("payload", payload),
	)

	return Accepted{Kind: kind, SensorID: reading.Sensor(), Timestamp: reading.At()}, nil
}

func (g *Gateway) reject(kind models.ReadingKind, payload map[string]any, err error) {
	field := "store"
	var ve *ValidationError
	if errors.As(err, &ve) {
		field = ve.Field
	}

	if g.metrics != nil {
		g.metrics.ReadingsRejected.WithLabelValues(string(kind), field).Inc()
	}
	g.logger.Warn("Reading rejected",
		zap.String("kind", string(kind)),
		zap.String("field", field),
		zap.Any("payload", payload),
		zap.Error(err),
	)
}
