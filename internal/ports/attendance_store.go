package ports

import (
	"attendance-service/internal/domain"
	"context"
)

// Port: the external attendance store the gate writes to.
// Clock-in creates a record; clock-out completes the employee's open record.
// Calls are made at most once per attempt.
type AttendanceStore interface {
	ClockIn(ctx context.Context, sub domain.ClockSubmission) (*domain.AttendanceEvent, error)
	ClockOut(ctx context.Context, sub domain.ClockSubmission) (*domain.AttendanceEvent, error)
}

// Port: attendance history for the admin screens.
type AttendanceRepository interface {
	ListAttendances(ctx context.Context, f domain.AttendanceFilter) ([]domain.AttendanceRecord, error)
}
