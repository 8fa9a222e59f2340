package domain

import (
	"fmt"
	"time"
)

type ClockKind string

const (
	ClockIn  ClockKind = "clock_in"
	ClockOut ClockKind = "clock_out"
)

func ParseClockKind(s string) (ClockKind, error) {
	switch ClockKind(s) {
	case ClockIn, ClockOut:
		return ClockKind(s), nil
	}
	return "", fmt.Errorf("unknown clock kind %q", s)
}

// The write the attendance gate hands to the attendance store once the
// geofence has passed.
type ClockSubmission struct {
	EmployeeID  string
	Kind        ClockKind
	Coordinates Coordinates
}

// A single accepted clock-in or clock-out. RecordedAt is assigned by the store.
type AttendanceEvent struct {
	ID          string
	EmployeeID  string
	Kind        ClockKind
	Coordinates Coordinates
	RecordedAt  time.Time
}

// One attendance row as the history and export screens see it: a clock-in
// and, once the employee leaves, the matching clock-out.
type AttendanceRecord struct {
	ID          string
	EmployeeID  string
	ClockInAt   time.Time
	ClockInPos  Coordinates
	ClockOutAt  *time.Time
	ClockOutPos *Coordinates
}

// Filter for attendance history queries. Zero values mean "no bound".
type AttendanceFilter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
}

// The computed result of one geofence evaluation. Never cached: location and
// office data may change between attempts.
type GeofenceDecision struct {
	NearestOffice  *Office
	DistanceMeters float64
	WithinRadius   bool
}
