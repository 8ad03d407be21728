package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// CoordinateError names the component of a coordinate that is out of range.
type CoordinateError struct {
	Field string // "Lat" or "Lon"
	Value float64
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%s %v is out of range", strings.ToLower(e.Field), e.Value)
}

// Validate checks that Lat is within [-90, 90] and Lon within [-180, 180].
// The first failing component is returned as a *CoordinateError.
func (c Coordinates) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		v, _ := fields[0].Value().(float64)
		return &CoordinateError{Field: fields[0].Field(), Value: v}
	}
	return err
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// LocationSnapshot is a single location fix reported by the device.
type LocationSnapshot struct {
	Coordinates        Coordinates `json:"coordinates"`
	HorizontalAccuracy float64     `json:"horizontal_accuracy"` // meters
	Timestamp          time.Time   `json:"timestamp"`
}

// AuthorizationStatus is the device's location permission state.
type AuthorizationStatus int

const (
	StatusNotDetermined AuthorizationStatus = iota
	StatusDenied
	StatusRestricted
	StatusAuthorizedWhenInUse
	StatusAuthorizedAlways
)

var statusNames = map[AuthorizationStatus]string{
	StatusNotDetermined:       "notDetermined",
	StatusDenied:              "denied",
	StatusRestricted:          "restricted",
	StatusAuthorizedWhenInUse: "authorizedWhenInUse",
	StatusAuthorizedAlways:    "authorizedAlways",
}

func (s AuthorizationStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("AuthorizationStatus(%d)", int(s))
}

// Authorized reports whether location fixes may be requested.
func (s AuthorizationStatus) Authorized() bool {
	return s == StatusAuthorizedWhenInUse || s == StatusAuthorizedAlways
}

// Refused reports whether the user or the device policy blocked access.
func (s AuthorizationStatus) Refused() bool {
	return s == StatusDenied || s == StatusRestricted
}

func (s AuthorizationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseAuthorizationStatus accepts the names produced by String, case-insensitively.
func ParseAuthorizationStatus(s string) (AuthorizationStatus, error) {
	for status, name := range statusNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return StatusNotDetermined, fmt.Errorf("unknown authorization status %q", s)
}
