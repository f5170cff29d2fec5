package database

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"github.com/google/uuid"
)

// ErrStoreClosed is returned by a MemoryStore after Close
var ErrStoreClosed = errors.New("store is closed")

// MemoryStore is an in-process Store. Appends never touch existing records,
// so a single RWMutex is enough for concurrent readers and writers.
type MemoryStore struct {
	mu          sync.RWMutex
	shocks      []models.ShockReading
	environment []models.EnvironmentReading
	closed      bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) StoreShockReading(ctx context.Context, r *models.ShockReading) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: "store shock reading", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &PersistenceError{Op: "store shock reading", Err: ErrStoreClosed}
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.shocks = append(s.shocks, *r)
	return nil
}

func (s *MemoryStore) StoreEnvironmentReading(ctx context.Context, r *models.EnvironmentReading) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: "store environment reading", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &PersistenceError{Op: "store environment reading", Err: ErrStoreClosed}
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.environment = append(s.environment, *r)
	return nil
}

func (s *MemoryStore) GetShockReadings(ctx context.Context, sensorID string) ([]models.ShockReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	readings := []models.ShockReading{}
	for _, r := range s.shocks {
		if sensorID == "" || r.SensorID == sensorID {
			readings = append(readings, r)
		}
	}
	return readings, nil
}

func (s *MemoryStore) GetEnvironmentReadings(ctx context.Context, sensorID string) ([]models.EnvironmentReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	readings := []models.EnvironmentReading{}
	for _, r := range s.environment {
		if sensorID == "" || r.SensorID == sensorID {
			readings = append(readings, r)
		}
	}
	return readings, nil
}

func (s *MemoryStore) GetSensorIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	seen := make(map[string]struct{})
	for _, r := range s.shocks {
		seen[r.SensorID] = struct{}{}
	}
	for _, r := range s.environment {
		seen[r.SensorID] = struct{}{}
	}

	sensors := make([]string, 0, len(seen))
	for id := range seen {
		sensors = append(sensors, id)
	}
	sort.Strings(sensors)
	return sensors, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
