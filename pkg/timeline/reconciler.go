// Package timeline merges the shock and environment readings of one sensor into
// a single chronological sequence.
package timeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
)

// Source is the read side of the record store
type Source interface {
	GetShockReadings(ctx context.Context, sensorID string) ([]models.ShockReading, error)
	GetEnvironmentReadings(ctx context.Context, sensorID string) ([]models.EnvironmentReading, error)
}

// Reconciler projects stored readings into timeline points. It holds no state.
type Reconciler struct {
	source Source
}

// NewReconciler creates a reconciler reading from source
func NewReconciler(source Source) *Reconciler {
	return &Reconciler{source: source}
}

// Reconcile returns every reading of sensorID as one point, ordered by the
// second-resolution UTC rendering of its timestamp. Points that render to
// the same second keep their gathering order: shocks first, then environment
// readings, each in store order. An unknown sensor yields an empty slice.
func (r *Reconciler) Reconcile(ctx context.Context, sensorID string) ([]models.TimelinePoint, error) {
	shocks, err := r.source.GetShockReadings(ctx, sensorID)
	if err != nil {
		return nil, fmt.Errorf("failed to read shock readings: %w", err)
	}

	environment, err := r.source.GetEnvironmentReadings(ctx, sensorID)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment readings: %w", err)
	}

	return Merge(shocks, environment), nil
}

// Merge builds the sorted sparse union of both reading kinds
func Merge(shocks []models.ShockReading, environment []models.EnvironmentReading) []models.TimelinePoint {
	points := make([]models.TimelinePoint, 0, len(shocks)+len(environment))

	for _, s := range shocks {
		flag := 0
		if s.ShockDetected {
			flag = 1
		}
		points = append(points, models.TimelinePoint{
			Timestamp: models.RenderTimestamp(s.Timestamp),
			Shock:     &flag,
		})
	}

	for _, e := range environment {
		temperature, humidity := e.Temperature, e.Humidity
		points = append(points, models.TimelinePoint{
			Timestamp:   models.RenderTimestamp(e.Timestamp),
			Temperature: &temperature,
			Humidity:    &humidity,
		})
	}

	// The rendered form is fixed width, so string order is chronological
	// at second resolution.
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})

	return points
}
