package ingest

import (
	"time"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
)

// Environment payload keys. The A2302 names are fixed by the device firmware.
const (
	FieldTemperature = "A2302_Temperature"
	FieldHumidity    = "A2302_Humidity"
)

// EnvironmentValidator validates temperature/humidity payloads
type EnvironmentValidator struct{}

// Kind returns the environment reading kind
func (v *EnvironmentValidator) Kind() models.ReadingKind {
	return models.KindEnvironment
}

// Endpoint returns the endpoint path for environment sensors
func (v *EnvironmentValidator) Endpoint() string {
	return "/temperature_data"
}

func (v *EnvironmentValidator) Decode(payload map[string]any, now time.Time) (models.Reading, error) {
	sensorID, err := requireSensorID(payload, FieldSensorID)
	if err != nil {
		return nil, err
	}

	temperature, err := requireNumber(payload, FieldTemperature)
	if err != nil {
		return nil, err
	}

	humidity, err := requireNumber(payload, FieldHumidity)
	if err != nil {
		return nil, err
	}

	ts, err := optionalTimestamp(payload, FieldTimestamp, now)
	if err != nil {
		return nil, err
	}

	return &models.EnvironmentReading{
		SensorID:    sensorID,
		Temperature: temperature,
		Humidity:    humidity,
		Timestamp:   ts,
	}, nil
}
