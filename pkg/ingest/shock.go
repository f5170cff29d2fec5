package ingest

import (
	"time"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
)

// Shock payload keys as sent by the accelerometer firmware
const (
	FieldSensorID      = "sensorID"
	FieldAccelX        = "accelX"
	FieldAccelY        = "accelY"
	FieldAccelZ        = "accelZ"
	FieldShockDetected = "shockDetected"
	FieldTimestamp     = "timestamp"
)

// ShockValidator validates accelerometer payloads
type ShockValidator struct{}

// Kind returns the shock reading kind
func (v *ShockValidator) Kind() models.ReadingKind {
	return models.KindShock
}

// Endpoint returns the endpoint path for shock sensors
func (v *ShockValidator) Endpoint() string {
	return "/data"
}

// Decode builds a ShockReading; fields are checked in declaration order
func (v *ShockValidator) Decode(payload map[string]any, now time.Time) (models.Reading, error) {
	sensorID, err := requireSensorID(payload, FieldSensorID)
	if err != nil {
		return nil, err
	}

	var accel [3]float64
	for i, field := range []string{FieldAccelX, FieldAccelY, FieldAccelZ} {
		if accel[i], err = requireNumber(payload, field); err != nil {
			return nil, err
		}
	}

	shock, err := requireBool(payload, FieldShockDetected)
	if err != nil {
		return nil, err
	}

	ts, err := optionalTimestamp(payload, FieldTimestamp, now)
	if err != nil {
		return nil, err
	}

	return &models.ShockReading{
		SensorID:      sensorID,
		AccelX:        accel[0],
		AccelY:        accel[1],
		AccelZ:        accel[2],
		ShockDetected: shock,
		Timestamp:     ts,
	}, nil
}
