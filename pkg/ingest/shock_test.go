package ingest

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
)

func shockPayload(t *testing.T, body string) map[string]any {
	t.Helper()
	payload, err := DecodePayloadBytes([]byte(body))
	if err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	return payload
}

func TestShockValidator_Decode(t *testing.T) {
	v := &ShockValidator{}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	payload := shockPayload(t, `{"sensorID":"s1","accelX":1.0,"accelY":0.2,"accelZ":9.8,"shockDetected":true}`)

	reading, err := v.Decode(payload, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	shock, ok := reading.(*models.ShockReading)
	if !ok {
		t.Fatalf("Expected *models.ShockReading, got %T", reading)
	}

	if shock.SensorID != "s1" {
		t.Errorf("Expected sensorID s1, got %s", shock.SensorID)
	}
	if shock.AccelX != 1.0 || shock.AccelY != 0.2 || shock.AccelZ != 9.8 {
		t.Errorf("Expected accel (1.0, 0.2, 9.8), got (%v, %v, %v)", shock.AccelX, shock.AccelY, shock.AccelZ)
	}
	if !shock.ShockDetected {
		t.Error("Expected shockDetected=true")
	}
	if !shock.Timestamp.Equal(now) {
		t.Errorf("Expected default timestamp %v, got %v", now, shock.Timestamp)
	}
}

func TestShockValidator_FieldErrors(t *testing.T) {
	v := &ShockValidator{}

	testCases := []struct {
		name   string
		body   string
		field  string
		reason string
	}{
		{
			name:   "Missing sensorID",
			body:   `{"accelX":1,"accelY":0,"accelZ":9.8,"shockDetected":true}`,
			field:  FieldSensorID,
			reason: reasonMissing,
		},
		{
			name:   "Blank sensorID",
			body:   `{"sensorID":"  ","accelX":1,"accelY":0,"accelZ":9.8,"shockDetected":true}`,
			field:  FieldSensorID,
			reason: reasonSensorID,
		},
		{
			name:   "Overlong sensorID",
			body:   `{"sensorID":"` + strings.Repeat("s", MaxSensorIDLength+1) + `","accelX":1,"accelY":0,"accelZ":9.8,"shockDetected":true}`,
			field:  FieldSensorID,
			reason: reasonSensorIDLength,
		},
		{
			name:   "Null accelY",
			body:   `{"sensorID":"s1","accelX":1,"accelY":null,"accelZ":9.8,"shockDetected":true}`,
			field:  FieldAccelY,
			reason: reasonMissing,
		},
		{
			name:   "Garbled accelZ",
			body:   `{"sensorID":"s1","accelX":1,"accelY":0,"accelZ":"9.8g","shockDetected":true}`,
			field:  FieldAccelZ,
			reason: reasonNumber,
		},
		{
			name:   "Out of range accelX",
			body:   `{"sensorID":"s1","accelX":1e400,"accelY":0,"accelZ":9.8,"shockDetected":true}`,
			field:  FieldAccelX,
			reason: reasonFinite,
		},
		{
			name:   "Object accelX",
			body:   `{"sensorID":"s1","accelX":{"v":1},"accelY":0,"accelZ":9.8,"shockDetected":true}`,
			field:  FieldAccelX,
			reason: reasonNumber,
		},
		{
			name:   "Missing shockDetected",
			body:   `{"sensorID":"s1","accelX":1,"accelY":0,"accelZ":9.8}`,
			field:  FieldShockDetected,
			reason: reasonMissing,
		},
		{
			name:   "Non-boolean shockDetected",
			body:   `{"sensorID":"s1","accelX":1,"accelY":0,"accelZ":9.8,"shockDetected":"maybe"}`,
			field:  FieldShockDetected,
			reason: reasonBool,
		},
		{
			name:   "Numeric shockDetected out of range",
			body:   `{"sensorID":"s1","accelX":1,"accelY":0,"accelZ":9.8,"shockDetected":2}`,
			field:  FieldShockDetected,
			reason: reasonBool,
		},
		{
			name:   "First offending field wins",
			body:   `{"sensorID":"s1","accelY":"x","shockDetected":"maybe"}`,
			field:  FieldAccelX,
			reason: reasonMissing,
		},
		{
			name:   "Bad timestamp",
			body:   `{"sensorID":"s1","accelX":1,"accelY":0,"accelZ":9.8,"shockDetected":true,"timestamp":"yesterday"}`,
			field:  FieldTimestamp,
			reason: reasonTime,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Decode(shockPayload(t, tc.body), time.Now())

			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Expected *ValidationError, got %T (%v)", err, err)
			}
			if ve.Field != tc.field {
				t.Errorf("Expected field %s, got %s", tc.field, ve.Field)
			}
			if ve.Reason != tc.reason {
				t.Errorf("Expected reason %q, got %q", tc.reason, ve.Reason)
			}
		})
	}
}

func TestShockValidator_LenientValues(t *testing.T) {
	v := &ShockValidator{}

	testCases := []struct {
		name      string
		body      string
		sensorID  string
		accelX    float64
		shock     bool
		timestamp time.Time
	}{
		{
			name:     "Numeric strings and string bool",
			body:     `{"sensorID":"s1","accelX":"1.5","accelY":"0","accelZ":" 9.8 ","shockDetected":"false"}`,
			sensorID: "s1",
			accelX:   1.5,
			shock:    false,
		},
		{
			name:     "Numeric sensor id and 0/1 bool",
			body:     `{"sensorID":42,"accelX":-3,"accelY":0,"accelZ":9.8,"shockDetected":1}`,
			sensorID: "42",
			accelX:   -3,
			shock:    true,
		},
		{
			name:      "SQL-style timestamp",
			body:      `{"sensorID":"s1","accelX":0,"accelY":0,"accelZ":0,"shockDetected":"1","timestamp":"2024-03-01 10:30:15"}`,
			sensorID:  "s1",
			shock:     true,
			timestamp: time.Date(2024, 3, 1, 10, 30, 15, 0, time.UTC),
		},
		{
			name:      "RFC3339 timestamp with offset",
			body:      `{"sensorID":"s1","accelX":0,"accelY":0,"accelZ":0,"shockDetected":true,"timestamp":"2024-03-01T11:30:15+01:00"}`,
			sensorID:  "s1",
			shock:     true,
			timestamp: time.Date(2024, 3, 1, 10, 30, 15, 0, time.UTC),
		},
		{
			name:      "Unix seconds timestamp",
			body:      `{"sensorID":"s1","accelX":0,"accelY":0,"accelZ":0,"shockDetected":true,"timestamp":1709289015}`,
			sensorID:  "s1",
			shock:     true,
			timestamp: time.Date(2024, 3, 1, 10, 30, 15, 0, time.UTC),
		},
	}

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reading, err := v.Decode(shockPayload(t, tc.body), now)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}

			shock := reading.(*models.ShockReading)
			if shock.SensorID != tc.sensorID {
				t.Errorf("Expected sensorID %s, got %s", tc.sensorID, shock.SensorID)
			}
			if shock.AccelX != tc.accelX {
				t.Errorf("Expected accelX %v, got %v", tc.accelX, shock.AccelX)
			}
			if shock.ShockDetected != tc.shock {
				t.Errorf("Expected shockDetected %v, got %v", tc.shock, shock.ShockDetected)
			}

			want := tc.timestamp
			if want.IsZero() {
				want = now
			}
			if !shock.Timestamp.Equal(want) {
				t.Errorf("Expected timestamp %v, got %v", want, shock.Timestamp)
			}
		})
	}
}

func TestShockValidator_IgnoresEnvironmentFields(t *testing.T) {
	v := &ShockValidator{}

	payload := map[string]any{
		"sensorID":      "s1",
		"accelX":        json.Number("1"),
		"accelY":        json.Number("2"),
		"accelZ":        json.Number("3"),
		"shockDetected": false,
	}

	if _, err := v.Decode(payload, time.Now()); err != nil {
		t.Errorf("Expected shock payload without temperature to be valid, got %v", err)
	}
}

func TestDecodePayload_Malformed(t *testing.T) {
	testCases := []string{
		`not json`,
		`[1,2,3]`,
		`null`,
		``,
	}

	for _, body := range testCases {
		if _, err := DecodePayloadBytes([]byte(body)); err == nil {
			t.Errorf("Expected error for body %q", body)
		}
	}
}

func TestShockValidator_SensorIDAtLengthLimit(t *testing.T) {
	v := &ShockValidator{}
	id := strings.Repeat("é", MaxSensorIDLength)

	reading, err := v.Decode(shockPayload(t, `{"sensorID":"`+id+`","accelX":1,"accelY":0,"accelZ":9.8,"shockDetected":false}`), time.Now())
	if err != nil {
		t.Fatalf("Expected a %d character id to be accepted, got %v", MaxSensorIDLength, err)
	}
	if reading.Sensor() != id {
		t.Errorf("Expected sensor %s, got %s", id, reading.Sensor())
	}
}
