package models

import (
	"strconv"
)

const (
	// UnknownCity is reported whenever a location cannot be determined.
	UnknownCity = "Unknown"

	// NotAvailable is shown in place of an absent numeric reading.
	NotAvailable = "N/A"
)

// SensorReading is one telemetry sample posted by a device. Every field is
// optional; nil means the device did not send it.
type SensorReading struct {
	Temperature *float64
	Humidity    *float64
	Location    *string
	OutsideTemp *float64
}

func (r SensorReading) LocationOrDefault() string {
	if r.Location == nil {
		return UnknownCity
	}
	return *r.Location
}

func (r SensorReading) TemperatureOrDefault() string {
	return FormatOptional(r.Temperature)
}

func (r SensorReading) HumidityOrDefault() string {
	return FormatOptional(r.Humidity)
}

func (r SensorReading) OutsideTempOrDefault() string {
	return FormatOptional(r.OutsideTemp)
}

// FormatOptional renders v with the shortest exact representation, or
// NotAvailable when v is nil.
func FormatOptional(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

type GeoLocation struct {
	City string
}

// NewGeoLocation never yields an empty city.
func NewGeoLocation(city string) GeoLocation {
	if city == "" {
		city = UnknownCity
	}
	return GeoLocation{City: city}
}
