package repositories

import (
	"attendance-service/internal/domain"
	"attendance-service/internal/platform/obs"
	"attendance-service/internal/ports"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type PostgresEmployeeRepository struct{ DB *sql.DB }

func NewPostgresEmployeeRepository(db *sql.DB) *PostgresEmployeeRepository {
	return &PostgresEmployeeRepository{DB: db}
}

const employeeColumns = `id, name, position, contact, office_id, created_at, updated_at`

func scanEmployee(r rowScanner) (domain.Employee, error) {
	var e domain.Employee
	err := r.Scan(&e.ID, &e.Name, &e.Position, &e.Contact, &e.OfficeID, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (p *PostgresEmployeeRepository) ListEmployees(ctx context.Context, officeID string) (_ []domain.Employee, err error) {
	defer obs.Time(ctx, "employees.List")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres employee repository: DB is nil")
	}

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE ($1 = '' OR office_id = $1) ORDER BY name, id;`
	rows, err := p.DB.QueryContext(ctx, query, officeID)
	if err != nil {
		return nil, fmt.Errorf("list employees: query employees table: %w", err)
	}
	defer rows.Close()

	employees := make([]domain.Employee, 0, 64)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("list employees: scan row: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list employees: row iteration: %w", err)
	}

	return employees, nil
}

func (p *PostgresEmployeeRepository) GetEmployee(ctx context.Context, id string) (_ *domain.Employee, err error) {
	defer obs.Time(ctx, "employees.Get")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres employee repository: DB is nil")
	}

	e, err := scanEmployee(p.DB.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get employee %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get employee %q: %w", id, err)
	}
	return &e, nil
}

func (p *PostgresEmployeeRepository) CreateEmployee(ctx context.Context, e *domain.Employee) (err error) {
	defer obs.Time(ctx, "employees.Create")(&err)

	if p.DB == nil {
		return errors.New("postgres employee repository: DB is nil")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	query := `
	INSERT INTO employees (id, name, position, contact, office_id)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at, updated_at;
	`
	err = p.DB.QueryRowContext(ctx, query, e.ID, e.Name, e.Position, e.Contact, e.OfficeID).
		Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create employee: %w", mapWriteErr(err, ports.ErrNotFound))
	}
	return nil
}

func (p *PostgresEmployeeRepository) UpdateEmployee(ctx context.Context, e *domain.Employee) (err error) {
	defer obs.Time(ctx, "employees.Update")(&err)

	if p.DB == nil {
		return errors.New("postgres employee repository: DB is nil")
	}

	query := `
	UPDATE employees
	SET name = $2, position = $3, contact = $4, office_id = $5, updated_at = now()
	WHERE id = $1
	RETURNING created_at, updated_at;
	`
	err = p.DB.QueryRowContext(ctx, query, e.ID, e.Name, e.Position, e.Contact, e.OfficeID).
		Scan(&e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update employee %q: %w", e.ID, ports.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update employee %q: %w", e.ID, mapWriteErr(err, ports.ErrNotFound))
	}
	return nil
}

func (p *PostgresEmployeeRepository) DeleteEmployee(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, "employees.Delete")(&err)

	if p.DB == nil {
		return errors.New("postgres employee repository: DB is nil")
	}

	res, err := p.DB.ExecContext(ctx, `DELETE FROM employees WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete employee %q: %w", id, err)
	}
	return requireAffected(res, "delete employee", id)
}
