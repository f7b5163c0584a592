// Package locate provides device location sources for point capture.
package locate

import (
	"context"
	"errors"
)

// Position is a single location reading in WGS84 decimal degrees.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ErrorCode classifies a failed location lookup.
// Values match the browser GeolocationPositionError codes.
type ErrorCode int

const (
	PermissionDenied    ErrorCode = 1
	PositionUnavailable ErrorCode = 2
	Timeout             ErrorCode = 3
)

// String returns the code name.
func (c ErrorCode) String() string {
	switch c {
	case PermissionDenied:
		return "permission denied"
	case PositionUnavailable:
		return "position unavailable"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is a failed location lookup. Message is the human readable reason.
type Error struct {
	Message string    `json:"message"`
	Code    ErrorCode `json:"code"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}

	return e.Message
}

// fromContext maps a context error to a lookup failure.
func fromContext(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: Timeout, Message: "Timeout expired"}
	}

	return &Error{Code: PositionUnavailable, Message: err.Error()}
}
