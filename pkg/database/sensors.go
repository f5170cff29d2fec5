package database

import (
	"context"
	"fmt"
)

// GetSensorIDs returns the distinct sensor ids across both reading kinds.
// Sensors are only known through their readings.
func (dm *DatabaseManager) GetSensorIDs(ctx context.Context) ([]string, error) {
	query := `
        SELECT sensor_id FROM shock_readings
        UNION
        SELECT sensor_id FROM environment_readings
        ORDER BY sensor_id
    `

	rows, err := dm.queryWithHealthCheck(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensors: %w", err)
	}
	defer rows.Close()

	sensors := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan sensor id: %w", err)
		}
		sensors = append(sensors, id)
	}

	return sensors, rows.Err()
}
