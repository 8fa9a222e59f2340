package domain

import (
	"fmt"
	"time"
)

// Why a location request failed. The set mirrors the failure classes the
// device geolocation APIs report.
type LocationFailure string

const (
	PermissionDenied    LocationFailure = "permission_denied"
	Timeout             LocationFailure = "timeout"
	Unsupported         LocationFailure = "unsupported"
	PositionUnavailable LocationFailure = "position_unavailable"
)

// LocationError is an expected, user-recoverable location failure.
type LocationError struct {
	Reason  LocationFailure
	Message string
}

func (e *LocationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("location unavailable: %s", e.Reason)
	}
	return fmt.Sprintf("location unavailable: %s: %s", e.Reason, e.Message)
}

func NewLocationError(reason LocationFailure, format string, args ...any) *LocationError {
	return &LocationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Knobs for a single location request.
//
// MaxCachedAge of zero asks the sensor for a fresh fix.
type LocationOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxCachedAge time.Duration
}

// A position fix. CapturedAt is zero when the source does not say when the
// fix was taken.
type Fix struct {
	Coordinates    Coordinates
	AccuracyMeters float64
	CapturedAt     time.Time
}

// A Wi-Fi access point observed by the client device, used for server-side
// positioning.
type AccessPoint struct {
	MACAddress     string
	SignalStrength int
}
