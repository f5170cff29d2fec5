package models

import (
	"time"

	"github.com/google/uuid"
)

// ReadingKind identifies one of the sensor reading variants
type ReadingKind string

const (
	KindShock       ReadingKind = "shock"
	KindEnvironment ReadingKind = "environment"
)

// TimestampLayout is the canonical second-resolution rendering of reading timestamps
const TimestampLayout = "2006-01-02 15:04:05"

// Reading is the common view over every stored sensor reading.
// Readings are immutable once stored.
type Reading interface {
	Kind() ReadingKind
	Sensor() string
	At() time.Time
}

// ShockReading represents a single accelerometer sample from a shock sensor
type ShockReading struct {
	ID            uuid.UUID `json:"id"`
	SensorID      string    `json:"sensorID"`
	AccelX        float64   `json:"accelX"`
	AccelY        float64   `json:"accelY"`
	AccelZ        float64   `json:"accelZ"`
	ShockDetected bool      `json:"shockDetected"`
	Timestamp     time.Time `json:"timestamp"`
}

func (r *ShockReading) Kind() ReadingKind { return KindShock }
func (r *ShockReading) Sensor() string    { return r.SensorID }
func (r *ShockReading) At() time.Time     { return r.Timestamp }

// EnvironmentReading represents a temperature/humidity sample
type EnvironmentReading struct {
	ID          uuid.UUID `json:"id"`
	SensorID    string    `json:"sensorID"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Timestamp   time.Time `json:"timestamp"`
}

func (r *EnvironmentReading) Kind() ReadingKind { return KindEnvironment }
func (r *EnvironmentReading) Sensor() string    { return r.SensorID }
func (r *EnvironmentReading) At() time.Time     { return r.Timestamp }

// RenderTimestamp formats t in UTC using TimestampLayout
func RenderTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
