package ports

import (
	"attendance-service/internal/domain"
	"context"
)

type ShiftRepository interface {
	ListShifts(ctx context.Context) ([]domain.Shift, error)
	GetShift(ctx context.Context, id string) (*domain.Shift, error)
	CreateShift(ctx context.Context, s *domain.Shift) error
	UpdateShift(ctx context.Context, s *domain.Shift) error
	DeleteShift(ctx context.Context, id string) error
}
