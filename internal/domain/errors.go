package domain

import "fmt"

// WeatherErrorKind classifies the failure held in weather state.
type WeatherErrorKind int

const (
	WeatherErrorUnknown WeatherErrorKind = iota
	WeatherErrorAPI
	WeatherErrorNetworkFailure
	WeatherErrorPermissionDenied
)

func (k WeatherErrorKind) String() string {
	switch k {
	case WeatherErrorAPI:
		return "api"
	case WeatherErrorNetworkFailure:
		return "networkFailure"
	case WeatherErrorPermissionDenied:
		return "permissionDenied"
	default:
		return "unknown"
	}
}

func (k WeatherErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// WeatherError is the last failure of the weather feature.
// Cause is set for API errors, Detail for unknown ones.
type WeatherError struct {
	Kind   WeatherErrorKind
	Cause  error
	Detail string
}

// NewAPIError wraps a failure reported by the weather service.
func NewAPIError(cause error) *WeatherError {
	return &WeatherError{Kind: WeatherErrorAPI, Cause: cause}
}

// NewNetworkFailure reports that the weather service could not be reached.
func NewNetworkFailure() *WeatherError {
	return &WeatherError{Kind: WeatherErrorNetworkFailure}
}

// NewPermissionDenied reports that location access was refused.
func NewPermissionDenied() *WeatherError {
	return &WeatherError{Kind: WeatherErrorPermissionDenied}
}

// NewUnknownError reports anything else, with a free-form detail.
func NewUnknownError(detail string) *WeatherError {
	return &WeatherError{Kind: WeatherErrorUnknown, Detail: detail}
}

// Error returns the user-facing message for the kind.
func (e *WeatherError) Error() string {
	switch e.Kind {
	case WeatherErrorAPI:
		if e.Cause == nil {
			return "API Error"
		}
		return "API Error: " + e.Cause.Error()
	case WeatherErrorNetworkFailure:
		return "Network connection failed. Please check your internet connection."
	case WeatherErrorPermissionDenied:
		return "Location permissions are required to fetch the weather."
	default:
		return "An unknown error occurred: " + e.Detail
	}
}

func (e *WeatherError) Unwrap() error { return e.Cause }

// Is matches another *WeatherError of the same kind.
func (e *WeatherError) Is(target error) bool {
	t, ok := target.(*WeatherError)
	return ok && t != nil && e.Kind == t.Kind
}

// Equal compares kind and message, the way two errors would look on screen.
func (e *WeatherError) Equal(o *WeatherError) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.Kind == o.Kind && e.Error() == o.Error()
}

// LocationErrorKind classifies why a location fix could not be obtained.
type LocationErrorKind int

const (
	LocationErrorUnknown LocationErrorKind = iota
	LocationServicesDisabled
	LocationAuthorizationDenied
	LocationFetchFailed
)

// LocationError is returned by location collaborators.
type LocationError struct {
	Kind  LocationErrorKind
	Cause error
}

func (e *LocationError) Error() string {
	var msg string
	switch e.Kind {
	case LocationServicesDisabled:
		msg = "location services are disabled"
	case LocationAuthorizationDenied:
		msg = "location access not authorized"
	case LocationFetchFailed:
		msg = "unable to fetch the current location"
	default:
		msg = "unknown location error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *LocationError) Unwrap() error { return e.Cause }

func (e *LocationError) Is(target error) bool {
	t, ok := target.(*LocationError)
	return ok && t != nil && e.Kind == t.Kind
}
