package repositories

import (
	"attendance-service/internal/domain"
	"attendance-service/internal/platform/obs"
	"attendance-service/internal/ports"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PostgreSQL-backed AttendanceStore and AttendanceRepository.
//
// Clock-in inserts a row; clock-out completes the employee's latest open row.
// A partial unique index keeps at most one open row per employee.
type PostgresAttendanceStore struct{ DB *sql.DB }

func NewPostgresAttendanceStore(db *sql.DB) *PostgresAttendanceStore {
	return &PostgresAttendanceStore{DB: db}
}

func (p *PostgresAttendanceStore) ClockIn(ctx context.Context, sub domain.ClockSubmission) (_ *domain.AttendanceEvent, err error) {
	defer obs.Time(ctx, "attendance.ClockIn")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres attendance store: DB is nil")
	}

	ev := &domain.AttendanceEvent{
		ID:          uuid.NewString(),
		EmployeeID:  sub.EmployeeID,
		Kind:        domain.ClockIn,
		Coordinates: sub.Coordinates,
	}

	query := `
	INSERT INTO attendances (id, employee_id, clock_in_at, clock_in_lat, clock_in_lon)
	VALUES ($1, $2, now(), $3, $4)
	RETURNING clock_in_at;
	`
	err = p.DB.QueryRowContext(ctx, query, ev.ID, sub.EmployeeID, sub.Coordinates.Lat, sub.Coordinates.Lon).
		Scan(&ev.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("clock in employee %q: %w", sub.EmployeeID, mapWriteErr(err, ports.ErrNotFound))
	}

	return ev, nil
}

func (p *PostgresAttendanceStore) ClockOut(ctx context.Context, sub domain.ClockSubmission) (_ *domain.AttendanceEvent, err error) {
	defer obs.Time(ctx, "attendance.ClockOut")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres attendance store: DB is nil")
	}

	ev := &domain.AttendanceEvent{
		EmployeeID:  sub.EmployeeID,
		Kind:        domain.ClockOut,
		Coordinates: sub.Coordinates,
	}

	query := `
	UPDATE attendances
	SET clock_out_at = now(), clock_out_lat = $2, clock_out_lon = $3
	WHERE id = (
		SELECT id FROM attendances
		WHERE employee_id = $1 AND clock_out_at IS NULL
		ORDER BY clock_in_at DESC
		LIMIT 1
	)
	RETURNING id, clock_out_at;
	`
	err = p.DB.QueryRowContext(ctx, query, sub.EmployeeID, sub.Coordinates.Lat, sub.Coordinates.Lon).
		Scan(&ev.ID, &ev.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("clock out employee %q: %w", sub.EmployeeID, ports.ErrNoOpenAttendance)
	}
	if err != nil {
		return nil, fmt.Errorf("clock out employee %q: %w", sub.EmployeeID, err)
	}

	return ev, nil
}

// Return attendance rows matching f, newest clock-in first.
func (p *PostgresAttendanceStore) ListAttendances(ctx context.Context, f domain.AttendanceFilter) (_ []domain.AttendanceRecord, err error) {
	defer obs.Time(ctx, "attendance.List")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres attendance store: DB is nil")
	}

	var (
		where []string
		args  []any
	)
	if f.EmployeeID != "" {
		args = append(args, f.EmployeeID)
		where = append(where, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		where = append(where, fmt.Sprintf("clock_in_at >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		where = append(where, fmt.Sprintf("clock_in_at < $%d", len(args)))
	}

	query := `
	SELECT id, employee_id, clock_in_at, clock_in_lat, clock_in_lon,
		clock_out_at, clock_out_lat, clock_out_lon
	FROM attendances`
	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\tORDER BY clock_in_at DESC, id;"

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendances: query attendances table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.AttendanceRecord, 0, 64)
	for rows.Next() {
		var (
			r              domain.AttendanceRecord
			outAt          sql.NullTime
			outLat, outLon sql.NullFloat64
		)
		err := rows.Scan(
			&r.ID, &r.EmployeeID, &r.ClockInAt, &r.ClockInPos.Lat, &r.ClockInPos.Lon,
			&outAt, &outLat, &outLon,
		)
		if err != nil {
			return nil, fmt.Errorf("list attendances: scan row: %w", err)
		}
		if outAt.Valid {
			t := outAt.Time
			r.ClockOutAt = &t
			r.ClockOutPos = &domain.Coordinates{Lat: outLat.Float64, Lon: outLon.Float64}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attendances: row iteration: %w", err)
	}

	return out, nil
}
