package ingest

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"sensor-relay/internal/models"
)

// Keys devices use for each reading field.
const (
	KeyTemperature = "temperature"
	KeyHumidity    = "humidity"
	KeyLocation    = "location"
	KeyOutsideTemp = "outside_temp"
)

// ExtractReading pulls the recognised fields out of f. Values that are
// missing, null or of the wrong kind are left nil; nothing is defaulted here.
func ExtractReading(f Fields) models.SensorReading {
	return models.SensorReading{
		Temperature: f.Float(KeyTemperature),
		Humidity:    f.Float(KeyHumidity),
		Location:    f.String(KeyLocation),
		OutsideTemp: f.Float(KeyOutsideTemp),
	}
}

// Float returns the numeric value stored under key. Numeric strings are
// accepted; booleans, objects and non-finite values are not.
func (f Fields) Float(key string) *float64 {
	v, ok := f[key]
	if !ok || v == nil {
		return nil
	}

	var out float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := ParseFloat(n.String())
		if err != nil || parsed == nil {
			return nil
		}
		out = *parsed
	case float64:
		out = n
	case float32:
		out = float64(n)
	case int:
		out = float64(n)
	case int64:
		out = float64(n)
	case uint64:
		out = float64(n)
	case string:
		parsed, err := ParseFloat(n)
		if err != nil || parsed == nil {
			return nil
		}
		out = *parsed
	default:
		return nil
	}

	if math.IsNaN(out) || math.IsInf(out, 0) {
		return nil
	}
	return &out
}

// String returns the text stored under key, or nil if it is not a string.
func (f Fields) String(key string) *string {
	s, ok := f[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// ParseFloat safely parses a string to float64
func ParseFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}

	return &val, nil
}
