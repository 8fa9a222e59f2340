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

type PostgresShiftRepository struct{ DB *sql.DB }

func NewPostgresShiftRepository(db *sql.DB) *PostgresShiftRepository {
	return &PostgresShiftRepository{DB: db}
}

const shiftColumns = `id, name, clock_in, clock_out, created_at, updated_at`

func scanShift(r rowScanner) (domain.Shift, error) {
	var (
		s                 domain.Shift
		clockIn, clockOut string
	)
	if err := r.Scan(&s.ID, &s.Name, &clockIn, &clockOut, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return domain.Shift{}, err
	}

	var err error
	if s.ClockIn, err = domain.ParseClockTime(clockIn); err != nil {
		return domain.Shift{}, fmt.Errorf("shift %s: clock_in: %w", s.ID, err)
	}
	if s.ClockOut, err = domain.ParseClockTime(clockOut); err != nil {
		return domain.Shift{}, fmt.Errorf("shift %s: clock_out: %w", s.ID, err)
	}
	return s, nil
}

func (p *PostgresShiftRepository) ListShifts(ctx context.Context) (_ []domain.Shift, err error) {
	defer obs.Time(ctx, "shifts.List")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres shift repository: DB is nil")
	}

	rows, err := p.DB.QueryContext(ctx, `SELECT `+shiftColumns+` FROM shifts ORDER BY clock_in, name;`)
	if err != nil {
		return nil, fmt.Errorf("list shifts: query shifts table: %w", err)
	}
	defer rows.Close()

	shifts := make([]domain.Shift, 0, 8)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("list shifts: scan row: %w", err)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shifts: row iteration: %w", err)
	}

	return shifts, nil
}

func (p *PostgresShiftRepository) GetShift(ctx context.Context, id string) (_ *domain.Shift, err error) {
	defer obs.Time(ctx, "shifts.Get")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres shift repository: DB is nil")
	}

	s, err := scanShift(p.DB.QueryRowContext(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get shift %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get shift %q: %w", id, err)
	}
	return &s, nil
}

func (p *PostgresShiftRepository) CreateShift(ctx context.Context, s *domain.Shift) (err error) {
	defer obs.Time(ctx, "shifts.Create")(&err)

	if p.DB == nil {
		return errors.New("postgres shift repository: DB is nil")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query := `
	INSERT INTO shifts (id, name, clock_in, clock_out)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at, updated_at;
	`
	err = p.DB.QueryRowContext(ctx, query, s.ID, s.Name, s.ClockIn.String(), s.ClockOut.String()).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create shift: %w", mapWriteErr(err, ports.ErrNotFound))
	}
	return nil
}

func (p *PostgresShiftRepository) UpdateShift(ctx context.Context, s *domain.Shift) (err error) {
	defer obs.Time(ctx, "shifts.Update")(&err)

	if p.DB == nil {
		return errors.New("postgres shift repository: DB is nil")
	}

	query := `
	UPDATE shifts
	SET name = $2, clock_in = $3, clock_out = $4, updated_at = now()
	WHERE id = $1
	RETURNING created_at, updated_at;
	`
	err = p.DB.QueryRowContext(ctx, query, s.ID, s.Name, s.ClockIn.String(), s.ClockOut.String()).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update shift %q: %w", s.ID, ports.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update shift %q: %w", s.ID, err)
	}
	return nil
}

func (p *PostgresShiftRepository) DeleteShift(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, "shifts.Delete")(&err)

	if p.DB == nil {
		return errors.New("postgres shift repository: DB is nil")
	}

	res, err := p.DB.ExecContext(ctx, `DELETE FROM shifts WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete shift %q: %w", id, err)
	}
	return requireAffected(res, "delete shift", id)
}
