package handler

import (
	"github.com/asaskevich/govalidator"

	"schemegate/internal/signal"
	dErrors "schemegate/pkg/domain-errors"
)

// GpsDetectRequest is the HTTP request body for POST /gps-detect.
type GpsDetectRequest struct {
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lon"`

	// Parsed values (populated by Validate)
	parsedPoint signal.GeoPoint
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *GpsDetectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Latitude == nil || r.Longitude == nil {
		return dErrors.New(dErrors.CodeValidation, "lat and lon are required")
	}
	if !govalidator.InRangeFloat64(*r.Latitude, -90, 90) {
		return dErrors.New(dErrors.CodeValidation, "lat must be between -90 and 90")
	}
	if !govalidator.InRangeFloat64(*r.Longitude, -180, 180) {
		return dErrors.New(dErrors.CodeValidation, "lon must be between -180 and 180")
	}
	r.parsedPoint = signal.GeoPoint{Lat: *r.Latitude, Lon: *r.Longitude}
	return nil
}

// ParsedPoint returns the validated coordinate.
func (r *GpsDetectRequest) ParsedPoint() *signal.GeoPoint {
	return &r.parsedPoint
}
