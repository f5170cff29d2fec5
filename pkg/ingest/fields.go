package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxSensorIDLength is the longest sensor id the record store keeps
const MaxSensorIDLength = 50

const (
	reasonMissing  = "missing"
	reasonNumber   = "not a number"
	reasonFinite   = "not a finite number"
	reasonBool     = "not a boolean"
	reasonSensorID = "must be a non-empty string"
	reasonTime     = "not a valid timestamp"
)

var reasonSensorIDLength = fmt.Sprintf("longer than %d characters", MaxSensorIDLength)

// timestampFormats are tried in order for string timestamps
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// DecodePayload reads a single JSON object. Numbers are kept as json.Number.
func DecodePayload(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if payload == nil {
		return nil, ErrMalformedPayload
	}
	return payload, nil
}

// DecodePayloadBytes is DecodePayload for an in-memory message
func DecodePayloadBytes(b []byte) (map[string]any, error) {
	return DecodePayload(bytes.NewReader(b))
}

func lookup(payload map[string]any, field string) (any, bool) {
	v, ok := payload[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func requireSensorID(payload map[string]any, field string) (string, error) {
	v, ok := lookup(payload, field)
	if !ok {
		return "", &ValidationError{Field: field, Reason: reasonMissing}
	}

	var id string
	switch val := v.(type) {
	case string:
		id = strings.TrimSpace(val)
	case json.Number:
		id = val.String()
	case float64:
		id = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return "", &ValidationError{Field: field, Reason: reasonSensorID}
	}

	if id == "" {
		return "", &ValidationError{Field: field, Reason: reasonSensorID}
	}
	if utf8.RuneCountInString(id) > MaxSensorIDLength {
		return "", &ValidationError{Field: field, Reason: reasonSensorIDLength}
	}
	return id, nil
}

func requireNumber(payload map[string]any, field string) (float64, error) {
	v, ok := lookup(payload, field)
	if !ok {
		return 0, &ValidationError{Field: field, Reason: reasonMissing}
	}

	var f float64
	var err error
	switch val := v.(type) {
	case json.Number:
		f, err = strconv.ParseFloat(val.String(), 64)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(val), 64)
	case float64:
		f = val
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	default:
		return 0, &ValidationError{Field: field, Reason: reasonNumber}
	}

	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &ValidationError{Field: field, Reason: reasonFinite}
		}
		return 0, &ValidationError{Field: field, Reason: reasonNumber}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ValidationError{Field: field, Reason: reasonFinite}
	}
	return f, nil
}

func requireBool(payload map[string]any, field string) (bool, error) {
	v, ok := lookup(payload, field)
	if !ok {
		return false, &ValidationError{Field: field, Reason: reasonMissing}
	}

	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	case json.Number:
		switch val.String() {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
	case float64:
		switch val {
		case 1:
			return true, nil
		case 0:
			return false, nil
		}
	}
	return false, &ValidationError{Field: field, Reason: reasonBool}
}

// optionalTimestamp returns the payload timestamp in UTC, or now when absent
func optionalTimestamp(payload map[string]any, field string, now time.Time) (time.Time, error) {
	v, ok := lookup(payload, field)
	if !ok {
		return now, nil
	}

	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		for _, format := range timestampFormats {
			if t, err := time.Parse(format, s); err == nil {
				return t.UTC(), nil
			}
		}
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC(), nil
		}
	case json.Number:
		if secs, err := val.Int64(); err == nil {
			return time.Unix(secs, 0).UTC(), nil
		}
		if f, err := val.Float64(); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return unixFloat(f), nil
		}
	case float64:
		if !math.IsNaN(val) && !math.IsInf(val, 0) {
			return unixFloat(val), nil
		}
	}
	return time.Time{}, &ValidationError{Field: field, Reason: reasonTime}
}

func unixFloat(f float64) time.Time {
	secs, frac := math.Modf(f)
	return time.Unix(int64(secs), int64(frac*1e9)).UTC()
}
