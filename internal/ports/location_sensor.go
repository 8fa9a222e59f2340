package ports

import (
	"attendance-service/internal/domain"
	"context"
)

// Contract for obtaining the caller's current position.
type LocationSensor interface {
	// Return a fix, or a *domain.LocationError describing why none is available.
	// Implementations must release any underlying watch when ctx is done.
	CurrentLocation(ctx context.Context, opts domain.LocationOptions) (domain.Fix, error)
}
