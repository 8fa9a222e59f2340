package location

import (
	"attendance-service/internal/domain"
	"context"
)

// Failure codes reported by device geolocation APIs.
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// Report is what the client device sent about its position: either a fix or
// the failure code its geolocation API raised.
type Report struct {
	Fix          *domain.Fix
	ErrorCode    int
	ErrorMessage string
}

// ReportedFixSensor serves the position the client device already acquired.
// One is built per request.
type ReportedFixSensor struct {
	report Report
}

func NewReportedFixSensor(r Report) *ReportedFixSensor {
	return &ReportedFixSensor{report: r}
}

func (s *ReportedFixSensor) CurrentLocation(ctx context.Context, _ domain.LocationOptions) (domain.Fix, error) {
	if err := ctx.Err(); err != nil {
		return domain.Fix{}, err
	}

	r := s.report
	if r.ErrorCode != 0 {
		return domain.Fix{}, reportedFailure(r.ErrorCode, r.ErrorMessage)
	}
	if r.Fix == nil {
		return domain.Fix{}, domain.NewLocationError(domain.Unsupported, "device did not report a location")
	}
	return *r.Fix, nil
}

func reportedFailure(code int, msg string) *domain.LocationError {
	switch code {
	case CodePermissionDenied:
		if msg == "" {
			msg = "location permission denied; enable GPS and allow location access"
		}
		return &domain.LocationError{Reason: domain.PermissionDenied, Message: msg}
	case CodeTimeout:
		if msg == "" {
			msg = "device timed out acquiring a position"
		}
		return &domain.LocationError{Reason: domain.Timeout, Message: msg}
	case CodePositionUnavailable:
		if msg == "" {
			msg = "device could not determine its position"
		}
		return &domain.LocationError{Reason: domain.PositionUnavailable, Message: msg}
	default:
		if msg == "" {
			msg = "device reported an unknown location error"
		}
		return domain.NewLocationError(domain.PositionUnavailable, "%s (code %d)", msg, code)
	}
}
