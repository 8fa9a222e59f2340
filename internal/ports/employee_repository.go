package ports

import (
	"attendance-service/internal/domain"
	"context"
)

type EmployeeRepository interface {
	// List employees; an empty officeID returns all of them.
	ListEmployees(ctx context.Context, officeID string) ([]domain.Employee, error)
	GetEmployee(ctx context.Context, id string) (*domain.Employee, error)
	CreateEmployee(ctx context.Context, e *domain.Employee) error
	UpdateEmployee(ctx context.Context, e *domain.Employee) error
	DeleteEmployee(ctx context.Context, id string) error
}
