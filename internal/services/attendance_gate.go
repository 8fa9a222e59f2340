package services

import (
	"attendance-service/internal/domain"
	"attendance-service/internal/ports"
	"context"
	"fmt"
	"log"
	"strings"
)

type OutcomeKind string

const (
	OutcomeRecorded            OutcomeKind = "recorded"
	OutcomeLocationUnavailable OutcomeKind = "location_unavailable"
	OutcomeNoOfficeConfigured  OutcomeKind = "no_office_configured"
	OutcomeTooFar              OutcomeKind = "too_far"
	OutcomeStoreError          OutcomeKind = "store_error"
)

// Gate states. AcquiringLocation and Submitting are the only suspension
// points; every other state is terminal.
type GateState string

const (
	StateStart             GateState = "start"
	StateAcquiringLocation GateState = "acquiring_location"
	StateLocationFailed    GateState = "location_failed"
	StateEvaluating        GateState = "evaluating"
	StateRejected          GateState = "rejected"
	StateSubmitting        GateState = "submitting"
	StateRecorded          GateState = "recorded"
	StateStoreFailed       GateState = "store_failed"
)

type ClockEventRequest struct {
	EmployeeID string
	Kind       domain.ClockKind
}

type GateConfig struct {
	RadiusMeters float64
	Location     domain.LocationOptions
}

// Result of one attendance attempt. Which fields are set depends on Kind:
//   - Recorded: Event, Fix, NearestOffice, DistanceMeters
//   - LocationUnavailable: Reason, Message
//   - NoOfficeConfigured: Fix, Message
//   - TooFar: Fix, NearestOffice, DistanceMeters
//   - StoreError: Fix, NearestOffice, DistanceMeters, Message, Err
type AttendanceOutcome struct {
	Kind           OutcomeKind
	State          GateState
	Reason         domain.LocationFailure
	Message        string
	Fix            *domain.Fix
	NearestOffice  *domain.Office
	DistanceMeters float64
	Event          *domain.AttendanceEvent
	Err            error
}

// AttemptClockEvent runs one geofenced clock-in or clock-out.
//
// The location is acquired first; only a fix within cfg.RadiusMeters of the
// nearest office reaches the store, and the store is called at most once.
// offices is a read-only snapshot and is never modified.
func AttemptClockEvent(
	ctx context.Context,
	req ClockEventRequest,
	sensor ports.LocationSensor,
	offices []domain.Office,
	store ports.AttendanceStore,
	cfg GateConfig,
) AttendanceOutcome {
	out := attemptClockEvent(ctx, req, sensor, offices, store, cfg)

	log.Printf(
		"attendance gate: employee_id=%s kind=%s state=%s outcome=%s distance_m=%.1f msg=%q",
		req.EmployeeID, req.Kind, out.State, out.Kind, out.DistanceMeters, out.Message,
	)
	return out
}

func attemptClockEvent(
	ctx context.Context,
	req ClockEventRequest,
	sensor ports.LocationSensor,
	offices []domain.Office,
	store ports.AttendanceStore,
	cfg GateConfig,
) AttendanceOutcome {
	employeeID := strings.TrimSpace(req.EmployeeID)
	if employeeID == "" {
		return storeFailed(nil, nil, 0, fmt.Errorf("employee id must not be empty"))
	}
	if req.Kind != domain.ClockIn && req.Kind != domain.ClockOut {
		return storeFailed(nil, nil, 0, fmt.Errorf("unknown clock kind %q", req.Kind))
	}
	if store == nil {
		return storeFailed(nil, nil, 0, fmt.Errorf("attendance store is not configured"))
	}

	// AcquiringLocation
	fix, locErr := Locate(ctx, sensor, cfg.Location)
	if locErr != nil {
		return AttendanceOutcome{
			Kind:    OutcomeLocationUnavailable,
			State:   StateLocationFailed,
			Reason:  locErr.Reason,
			Message: locErr.Message,
		}
	}
	if fix.Coordinates.IsZero() {
		log.Printf("attendance gate: employee_id=%s reported fix at (0,0); evaluating as-is", employeeID)
	}

	// Evaluating
	decision := EvaluateGeofence(fix.Coordinates, offices, cfg.RadiusMeters)
	if decision.NearestOffice == nil {
		return AttendanceOutcome{
			Kind:    OutcomeNoOfficeConfigured,
			State:   StateRejected,
			Message: "no office is registered; attendance cannot be checked",
			Fix:     &fix,
		}
	}

	if !decision.WithinRadius {
		return AttendanceOutcome{
			Kind:           OutcomeTooFar,
			State:          StateRejected,
			Message:        fmt.Sprintf("%.0f m from %s, limit is %.0f m", decision.DistanceMeters, decision.NearestOffice.Name, cfg.RadiusMeters),
			Fix:            &fix,
			NearestOffice:  decision.NearestOffice,
			DistanceMeters: decision.DistanceMeters,
		}
	}

	// Submitting
	sub := domain.ClockSubmission{
		EmployeeID:  employeeID,
		Kind:        req.Kind,
		Coordinates: fix.Coordinates,
	}

	var (
		event *domain.AttendanceEvent
		err   error
	)
	if sub.Kind == domain.ClockIn {
		event, err = store.ClockIn(ctx, sub)
	} else {
		event, err = store.ClockOut(ctx, sub)
	}
	if err != nil {
		return storeFailed(&fix, decision.NearestOffice, decision.DistanceMeters, err)
	}

	return AttendanceOutcome{
		Kind:           OutcomeRecorded,
		State:          StateRecorded,
		Fix:            &fix,
		NearestOffice:  decision.NearestOffice,
		DistanceMeters: decision.DistanceMeters,
		Event:          event,
	}
}

func storeFailed(fix *domain.Fix, office *domain.Office, distance float64, err error) AttendanceOutcome {
	return AttendanceOutcome{
		Kind:           OutcomeStoreError,
		State:          StateStoreFailed,
		Message:        err.Error(),
		Fix:            fix,
		NearestOffice:  office,
		DistanceMeters: distance,
		Err:            err,
	}
}
