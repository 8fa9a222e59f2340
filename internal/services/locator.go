package services

import (
	"attendance-service/internal/domain"
	"attendance-service/internal/ports"
	"context"
	"errors"
	"time"
)

type fixResult struct {
	fix domain.Fix
	err error
}

// Locate acquires one fix from sensor under the limits in opts.
//
// The sensor runs on its own goroutine against a child context that is always
// cancelled before Locate returns, so an abandoned or timed-out request
// releases whatever the sensor holds. Failures come back classified; Locate
// never returns an unclassified error.
func Locate(
	ctx context.Context,
	sensor ports.LocationSensor,
	opts domain.LocationOptions,
) (domain.Fix, *domain.LocationError) {
	if sensor == nil {
		return domain.Fix{}, domain.NewLocationError(domain.Unsupported, "no location sensor available")
	}

	reqCtx, cancel := ctx, context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	defer cancel()

	// Buffered so a sensor that finishes after we stop waiting does not block.
	resultCh := make(chan fixResult, 1)
	go func() {
		fix, err := sensor.CurrentLocation(reqCtx, opts)
		resultCh <- fixResult{fix: fix, err: err}
	}()

	var res fixResult
	select {
	case res = <-resultCh:
	case <-reqCtx.Done():
		return domain.Fix{}, classifyContextErr(ctx, opts)
	}

	if res.err != nil {
		return domain.Fix{}, classifyLocationErr(ctx, reqCtx, res.err, opts)
	}

	fix := res.fix
	if err := fix.Coordinates.Validate(); err != nil {
		return domain.Fix{}, domain.NewLocationError(domain.PositionUnavailable, "sensor returned invalid position: %v", err)
	}

	if opts.MaxCachedAge > 0 && !fix.CapturedAt.IsZero() {
		if age := time.Since(fix.CapturedAt); age > opts.MaxCachedAge {
			return domain.Fix{}, domain.NewLocationError(
				domain.PositionUnavailable,
				"fix is %s old, limit is %s",
				age.Truncate(time.Second), opts.MaxCachedAge,
			)
		}
	}

	return fix, nil
}

func classifyContextErr(parent context.Context, opts domain.LocationOptions) *domain.LocationError {
	if parent.Err() != nil {
		return domain.NewLocationError(domain.Timeout, "location request abandoned: %v", parent.Err())
	}
	if opts.Timeout <= 0 {
		return domain.NewLocationError(domain.Timeout, "position request timed out")
	}
	return domain.NewLocationError(domain.Timeout, "no position fix within %s", opts.Timeout)
}

func classifyLocationErr(parent, reqCtx context.Context, err error, opts domain.LocationOptions) *domain.LocationError {
	var le *domain.LocationError
	if errors.As(err, &le) {
		return le
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || reqCtx.Err() != nil {
		return classifyContextErr(parent, opts)
	}

	return domain.NewLocationError(domain.PositionUnavailable, "%v", err)
}
