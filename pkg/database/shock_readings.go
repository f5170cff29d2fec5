package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"github.com/google/uuid"
)

const insertShockReadingQuery = `
        INSERT INTO shock_readings (id, sensor_id, accel_x, accel_y, accel_z, shock_detected, recorded_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `

// StoreShockReading appends a shock reading in its own transaction
func (dm *DatabaseManager) StoreShockReading(ctx context.Context, r *models.ShockReading) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	return dm.execInTx(ctx, "store shock reading", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, insertShockReadingQuery,
			r.ID,
			r.SensorID,
			r.AccelX,
			r.AccelY,
			r.AccelZ,
			r.ShockDetected,
			r.Timestamp.UTC(),
		)
		return err
	})
}

// GetShockReadings returns shock readings in insertion order
func (dm *DatabaseManager) GetShockReadings(ctx context.Context, sensorID string) ([]models.ShockReading, error) {
	query := `
        SELECT id, sensor_id, accel_x, accel_y, accel_z, shock_detected, recorded_at
        FROM shock_readings
    `
	args := []interface{}{}
	if sensorID != "" {
		query += " WHERE sensor_id = $1"
		args = append(args, sensorID)
	}
	query += " ORDER BY seq ASC"

	rows, err := dm.queryWithHealthCheck(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shock readings: %w", err)
	}
	defer rows.Close()

	readings := []models.ShockReading{}
	for rows.Next() {
		var r models.ShockReading
		if err := rows.Scan(&r.ID, &r.SensorID, &r.AccelX, &r.AccelY, &r.AccelZ, &r.ShockDetected, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan shock reading: %w", err)
		}
		r.Timestamp = r.Timestamp.UTC()
		readings = append(readings, r)
	}

	return readings, rows.Err()
}
