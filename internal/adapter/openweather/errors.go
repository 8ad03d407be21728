package openweather

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/weather-stories/internal/transfer"
)

// ErrorKind classifies a ClientError.
type ErrorKind int

const (
	Unknown ErrorKind = iota
	InvalidURL
	RequestFailed
	DecodingFailed
	InvalidResponse
	APIError
)

// ClientError is returned by Client.FetchWeather.
type ClientError struct {
	Kind ErrorKind
	// Message is set for APIError.
	Message string
	// StatusCode is set for InvalidResponse when the server answered.
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	var msg string
	switch e.Kind {
	case InvalidURL:
		msg = "The URL provided is invalid."
	case RequestFailed:
		msg = "The request to the server failed."
	case DecodingFailed:
		msg = "Failed to decode the weather data from the server."
	case InvalidResponse:
		msg = "The server response was invalid."
		if e.StatusCode != 0 {
			msg = fmt.Sprintf("The server response was invalid (status %d).", e.StatusCode)
		}
	case APIError:
		msg = "API Error: " + e.Message
	default:
		msg = "An unknown error occurred."
	}
	return msg
}

func (e *ClientError) Unwrap() error { return e.Cause }

func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	return ok && t != nil && t.Kind == e.Kind
}

// Unreachable reports whether the request never got a response.
func (e *ClientError) Unreachable() bool { return e.Kind == RequestFailed }

// fromTransfer maps pipeline failures onto the client taxonomy.
func fromTransfer(err error) *ClientError {
	var te *transfer.Error
	if !errors.As(err, &te) {
		return &ClientError{Kind: Unknown, Cause: err}
	}
	switch te.Kind {
	case transfer.RequestFailed:
		return &ClientError{Kind: RequestFailed, Cause: err}
	case transfer.DecodingFailed:
		return &ClientError{Kind: DecodingFailed, Cause: err}
	case transfer.NoResponse:
		return &ClientError{Kind: InvalidResponse, Cause: err}
	case transfer.NetworkFailure:
		return &ClientError{Kind: InvalidResponse, StatusCode: te.StatusCode, Cause: err}
	}
	return &ClientError{Kind: Unknown, Cause: err}
}
