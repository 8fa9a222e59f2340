package ports

import (
	"attendance-service/internal/domain"
	"context"
)

// Port: read-only snapshot of every active office, in insertion order.
// Geofence correctness depends on the full set, so implementations must not paginate.
type OfficeRegistry interface {
	ListOffices(ctx context.Context) ([]domain.Office, error)
}

// Port: full office management used by the admin screens.
type OfficeRepository interface {
	OfficeRegistry
	GetOffice(ctx context.Context, id string) (*domain.Office, error)
	CreateOffice(ctx context.Context, o *domain.Office) error
	UpdateOffice(ctx context.Context, o *domain.Office) error
	DeleteOffice(ctx context.Context, id string) error
}
