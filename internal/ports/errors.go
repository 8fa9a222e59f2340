package ports

import "errors"

var (
	// ErrNotFound is returned when a record with the requested ID does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoOpenAttendance is returned by ClockOut when the employee has no
	// clock-in without a matching clock-out.
	ErrNoOpenAttendance = errors.New("no open attendance to clock out")
	// ErrConflict is returned when a write would break a uniqueness or reference rule.
	ErrConflict = errors.New("conflict")
)
