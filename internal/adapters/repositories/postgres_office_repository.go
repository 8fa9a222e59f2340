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

// PostgreSQL-backed implementation of the OfficeRepository port.
type PostgresOfficeRepository struct{ DB *sql.DB }

func NewPostgresOfficeRepository(db *sql.DB) *PostgresOfficeRepository {
	return &PostgresOfficeRepository{DB: db}
}

const officeColumns = `id, name, address, description, latitude, longitude, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffice(r rowScanner) (domain.Office, error) {
	var o domain.Office
	err := r.Scan(
		&o.ID, &o.Name, &o.Address, &o.Description,
		&o.Coordinates.Lat, &o.Coordinates.Lon,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// Return every office in insertion order. The geofence needs the full set,
// so this never paginates.
func (p *PostgresOfficeRepository) ListOffices(ctx context.Context) (_ []domain.Office, err error) {
	defer obs.Time(ctx, "offices.List")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres office repository: DB is nil")
	}

	rows, err := p.DB.QueryContext(ctx, `SELECT `+officeColumns+` FROM offices ORDER BY created_at, id;`)
	if err != nil {
		return nil, fmt.Errorf("list offices: query offices table: %w", err)
	}
	defer rows.Close()

	offices := make([]domain.Office, 0, 16)
	for rows.Next() {
		o, err := scanOffice(rows)
		if err != nil {
			return nil, fmt.Errorf("list offices: scan row: %w", err)
		}
		offices = append(offices, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list offices: row iteration: %w", err)
	}

	return offices, nil
}

func (p *PostgresOfficeRepository) GetOffice(ctx context.Context, id string) (_ *domain.Office, err error) {
	defer obs.Time(ctx, "offices.Get")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres office repository: DB is nil")
	}

	row := p.DB.QueryRowContext(ctx, `SELECT `+officeColumns+` FROM offices WHERE id = $1;`, id)
	o, err := scanOffice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get office %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get office %q: %w", id, err)
	}
	return &o, nil
}

func (p *PostgresOfficeRepository) CreateOffice(ctx context.Context, o *domain.Office) (err error) {
	defer obs.Time(ctx, "offices.Create")(&err)

	if p.DB == nil {
		return errors.New("postgres office repository: DB is nil")
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	query := `
	INSERT INTO offices (id, name, address, description, latitude, longitude)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at, updated_at;
	`
	err = p.DB.QueryRowContext(ctx, query,
		o.ID, o.Name, o.Address, o.Description, o.Coordinates.Lat, o.Coordinates.Lon,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create office: %w", mapWriteErr(err, ports.ErrNotFound))
	}
	return nil
}

func (p *PostgresOfficeRepository) UpdateOffice(ctx context.Context, o *domain.Office) (err error) {
	defer obs.Time(ctx, "offices.Update")(&err)

	if p.DB == nil {
		return errors.New("postgres office repository: DB is nil")
	}

	query := `
	UPDATE offices
	SET name = $2, address = $3, description = $4, latitude = $5, longitude = $6, updated_at = now()
	WHERE id = $1
	RETURNING created_at, updated_at;
	`
	err = p.DB.QueryRowContext(ctx, query,
		o.ID, o.Name, o.Address, o.Description, o.Coordinates.Lat, o.Coordinates.Lon,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update office %q: %w", o.ID, ports.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update office %q: %w", o.ID, err)
	}
	return nil
}

func (p *PostgresOfficeRepository) DeleteOffice(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, "offices.Delete")(&err)

	if p.DB == nil {
		return errors.New("postgres office repository: DB is nil")
	}

	res, err := p.DB.ExecContext(ctx, `DELETE FROM offices WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete office %q: %w", id, mapWriteErr(err, ports.ErrConflict))
	}
	return requireAffected(res, "delete office", id)
}

func requireAffected(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %q: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", op, id, ports.ErrNotFound)
	}
	return nil
}
