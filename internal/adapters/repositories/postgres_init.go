package repositories

import (
	"attendance-service/internal/domain"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Initialize the PostgreSQL database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createOfficesQuery := `
	CREATE TABLE IF NOT EXISTS offices (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
		longitude DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createEmployeesQuery := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position TEXT NOT NULL,
		contact TEXT NOT NULL,
		office_id TEXT NOT NULL REFERENCES offices(id) ON DELETE RESTRICT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createShiftsQuery := `
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		clock_in TEXT NOT NULL,
		clock_out TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createAttendancesQuery := `
	CREATE TABLE IF NOT EXISTS attendances (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		clock_in_at TIMESTAMPTZ NOT NULL,
		clock_in_lat DOUBLE PRECISION NOT NULL,
		clock_in_lon DOUBLE PRECISION NOT NULL,
		clock_out_at TIMESTAMPTZ,
		clock_out_lat DOUBLE PRECISION,
		clock_out_lon DOUBLE PRECISION
	);
	`

	// At most one open attendance per employee.
	createOpenIndexQuery := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendances_open
	ON attendances(employee_id) WHERE clock_out_at IS NULL;
	`

	createHistoryIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_attendances_employee_clock_in
	ON attendances(employee_id, clock_in_at DESC);
	`

	createEmployeeOfficeIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_employees_office
	ON employees(office_id);
	`

	// Server-side position lookups keyed by access point set.
	createFixCacheQuery := `
	CREATE TABLE IF NOT EXISTS fix_cache (
		cache_key TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		accuracy DOUBLE PRECISION NOT NULL,
		captured_at TIMESTAMPTZ,
		expires_at TIMESTAMPTZ NOT NULL
	);
	`

	statements := []string{
		createOfficesQuery,
		createEmployeesQuery,
		createShiftsQuery,
		createAttendancesQuery,
		createOpenIndexQuery,
		createHistoryIndexQuery,
		createEmployeeOfficeIndexQuery,
		createFixCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type OfficeSeed struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type ShiftSeed struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ClockIn  string `json:"clock_in"`
	ClockOut string `json:"clock_out"`
}

type EmployeeSeed struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Contact  string `json:"contact"`
	OfficeID string `json:"office_id"`
}

type Seed struct {
	Offices   []OfficeSeed   `json:"offices"`
	Shifts    []ShiftSeed    `json:"shifts"`
	Employees []EmployeeSeed `json:"employees"`
}

// LoadSeed reads and validates a seed file without touching the database.
func LoadSeed(jsonPath string) (*Seed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed: parse json: %w", err)
	}

	for i := range data.Offices {
		o := &data.Offices[i]
		o.Name = strings.TrimSpace(o.Name)
		if o.Name == "" {
			return nil, fmt.Errorf("seed offices: item at index %d: name cannot be empty", i+1)
		}
		c := domain.Coordinates{Lat: o.Latitude, Lon: o.Longitude}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("seed offices: item %q: %w", o.Name, err)
		}
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
	}

	for i := range data.Shifts {
		s := &data.Shifts[i]
		if _, err := domain.ParseClockTime(s.ClockIn); err != nil {
			return nil, fmt.Errorf("seed shifts: item at index %d: %w", i+1, err)
		}
		if _, err := domain.ParseClockTime(s.ClockOut); err != nil {
			return nil, fmt.Errorf("seed shifts: item at index %d: %w", i+1, err)
		}
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
	}

	for i := range data.Employees {
		e := &data.Employees[i]
		if strings.TrimSpace(e.ID) == "" {
			return nil, fmt.Errorf("seed employees: item at index %d: id cannot be empty", i+1)
		}
		if strings.TrimSpace(e.OfficeID) == "" {
			return nil, fmt.Errorf("seed employees: item %q: office_id cannot be empty", e.ID)
		}
	}

	return &data, nil
}

// Populate the database with offices, shifts and employees from a JSON file.
// Existing rows with the same ID are replaced.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	if db == nil {
		return errors.New("seed: DB is nil")
	}

	data, err := LoadSeed(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, o := range data.Offices {
		_, err := tx.Exec(`
		INSERT INTO offices (id, name, address, description, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			address = EXCLUDED.address,
			description = EXCLUDED.description,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			updated_at = now();
		`, o.ID, o.Name, o.Address, o.Description, o.Latitude, o.Longitude)
		if err != nil {
			return fmt.Errorf("seed offices: insert id=%s: %w", o.ID, err)
		}
	}

	for _, s := range data.Shifts {
		_, err := tx.Exec(`
		INSERT INTO shifts (id, name, clock_in, clock_out)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			clock_in = EXCLUDED.clock_in,
			clock_out = EXCLUDED.clock_out,
			updated_at = now();
		`, s.ID, s.Name, s.ClockIn, s.ClockOut)
		if err != nil {
			return fmt.Errorf("seed shifts: insert id=%s: %w", s.ID, err)
		}
	}

	for _, e := range data.Employees {
		_, err := tx.Exec(`
		INSERT INTO employees (id, name, position, contact, office_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			position = EXCLUDED.position,
			contact = EXCLUDED.contact,
			office_id = EXCLUDED.office_id,
			updated_at = now();
		`, e.ID, e.Name, e.Position, e.Contact, e.OfficeID)
		if err != nil {
			return fmt.Errorf("seed employees: insert id=%s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
