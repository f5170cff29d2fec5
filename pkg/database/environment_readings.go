package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"github.com/google/uuid"
)

const insertEnvironmentReadingQuery = `
        INSERT INTO environment_readings (id, sensor_id, temperature, humidity, recorded_at)
        VALUES ($1, $2, $3, $4, $5)
    `

// StoreEnvironmentReading appends a temperature/humidity reading in its own transaction
func (dm *DatabaseManager) StoreEnvironmentReading(ctx context.Context, r *models.EnvironmentReading) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	return dm.execInTx(ctx, "store environment reading", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, insertEnvironmentReadingQuery,
			r.ID,
			r.SensorID,
			r.Temperature,
			r.Humidity,
			r.Timestamp.UTC(),
		)
		return err
	})
}

// GetEnvironmentReadings returns environment readings in insertion order
func (dm *DatabaseManager) GetEnvironmentReadings(ctx context.Context, sensorID string) ([]models.EnvironmentReading, error) {
	query := `
        SELECT id, sensor_id, temperature, humidity, recorded_at
        FROM environment_readings
    `
	args := []interface{}{}
	if sensorID != "" {
		query += " WHERE sensor_id = $1"
		args = append(args, sensorID)
	}
	query += " ORDER BY seq ASC"

	rows, err := dm.queryWithHealthCheck(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query environment readings: %w", err)
	}
	defer rows.Close()

	readings := []models.EnvironmentReading{}
	for rows.Next() {
		var r models.EnvironmentReading
		if err := rows.Scan(&r.ID, &r.SensorID, &r.Temperature, &r.Humidity, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan environment reading: %w", err)
		}
		r.Timestamp = r.Timestamp.UTC()
		readings = append(readings, r)
	}

	return readings, rows.Err()
}
