package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
)

// Store is the append-only record store shared by ingestion and queries.
// An empty sensorID on reads means every sensor.
type Store interface {
	StoreShockReading(ctx context.Context, r *models.ShockReading) error
	StoreEnvironmentReading(ctx context.Context, r *models.EnvironmentReading) error
	GetShockReadings(ctx context.Context, sensorID string) ([]models.ShockReading, error)
	GetEnvironmentReadings(ctx context.Context, sensorID string) ([]models.EnvironmentReading, error)
	GetSensorIDs(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// PersistenceError reports a failed store write. The attempted write was rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err wraps a PersistenceError
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

var (
	_ Store = (*DatabaseManager)(nil)
	_ Store = (*MemoryStore)(nil)
)
