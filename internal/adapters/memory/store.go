package memory

import (
	"attendance-service/internal/domain"
	"attendance-service/internal/ports"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps offices, employees, shifts and attendance in process memory.
// It implements the repository ports and the attendance store and is safe for
// concurrent use. Used for demo runs and tests.
type Store struct {
	mu          sync.RWMutex
	offices     []domain.Office
	employees   []domain.Employee
	shifts      []domain.Shift
	attendances []domain.AttendanceRecord
	submissions int

	now func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Submissions returns how many ClockIn/ClockOut calls reached the store.
func (s *Store) Submissions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submissions
}

func (s *Store) ListOffices(_ context.Context) ([]domain.Office, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.offices), nil
}

func (s *Store) GetOffice(_ context.Context, id string) (*domain.Office, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.offices {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, fmt.Errorf("get office %q: %w", id, ports.ErrNotFound)
}

func (s *Store) CreateOffice(_ context.Context, o *domain.Office) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := s.now()
	o.CreatedAt, o.UpdatedAt = now, now
	s.offices = append(s.offices, *o)
	return nil
}

func (s *Store) UpdateOffice(_ context.Context, o *domain.Office) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.offices {
		if s.offices[i].ID == o.ID {
			o.CreatedAt = s.offices[i].CreatedAt
			o.UpdatedAt = s.now()
			s.offices[i] = *o
			return nil
		}
	}
	return fmt.Errorf("update office %q: %w", o.ID, ports.ErrNotFound)
}

func (s *Store) DeleteOffice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.employees {
		if e.OfficeID == id {
			return fmt.Errorf("delete office %q: employees still assigned: %w", id, ports.ErrConflict)
		}
	}
	n := len(s.offices)
	s.offices = slices.DeleteFunc(s.offices, func(o domain.Office) bool { return o.ID == id })
	if len(s.offices) == n {
		return fmt.Errorf("delete office %q: %w", id, ports.ErrNotFound)
	}
	return nil
}

func (s *Store) ListEmployees(_ context.Context, officeID string) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		if officeID == "" || e.OfficeID == officeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) GetEmployee(_ context.Context, id string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.employees {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("get employee %q: %w", id, ports.ErrNotFound)
}

func (s *Store) CreateEmployee(_ context.Context, e *domain.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasOffice(e.OfficeID) {
		return fmt.Errorf("create employee: office %q: %w", e.OfficeID, ports.ErrNotFound)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	for _, existing := range s.employees {
		if existing.ID == e.ID {
			return fmt.Errorf("create employee %q: %w", e.ID, ports.ErrConflict)
		}
	}
	now := s.now()
	e.CreatedAt, e.UpdatedAt = now, now
	s.employees = append(s.employees, *e)
	return nil
}

func (s *Store) UpdateEmployee(_ context.Context, e *domain.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasOffice(e.OfficeID) {
		return fmt.Errorf("update employee: office %q: %w", e.OfficeID, ports.ErrNotFound)
	}
	for i := range s.employees {
		if s.employees[i].ID == e.ID {
			e.CreatedAt = s.employees[i].CreatedAt
			e.UpdatedAt = s.now()
			s.employees[i] = *e
			return nil
		}
	}
	return fmt.Errorf("update employee %q: %w", e.ID, ports.ErrNotFound)
}

func (s *Store) DeleteEmployee(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.employees)
	s.employees = slices.DeleteFunc(s.employees, func(e domain.Employee) bool { return e.ID == id })
	if len(s.employees) == n {
		return fmt.Errorf("delete employee %q: %w", id, ports.ErrNotFound)
	}
	return nil
}

func (s *Store) ListShifts(_ context.Context) ([]domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.shifts), nil
}

func (s *Store) GetShift(_ context.Context, id string) (*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sh := range s.shifts {
		if sh.ID == id {
			return &sh, nil
		}
	}
	return nil, fmt.Errorf("get shift %q: %w", id, ports.ErrNotFound)
}

func (s *Store) CreateShift(_ context.Context, sh *domain.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	now := s.now()
	sh.CreatedAt, sh.UpdatedAt = now, now
	s.shifts = append(s.shifts, *sh)
	return nil
}

func (s *Store) UpdateShift(_ context.Context, sh *domain.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.shifts {
		if s.shifts[i].ID == sh.ID {
			sh.CreatedAt = s.shifts[i].CreatedAt
			sh.UpdatedAt = s.now()
			s.shifts[i] = *sh
			return nil
		}
	}
	return fmt.Errorf("update shift %q: %w", sh.ID, ports.ErrNotFound)
}

func (s *Store) DeleteShift(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.shifts)
	s.shifts = slices.DeleteFunc(s.shifts, func(sh domain.Shift) bool { return sh.ID == id })
	if len(s.shifts) == n {
		return fmt.Errorf("delete shift %q: %w", id, ports.ErrNotFound)
	}
	return nil
}

func (s *Store) ClockIn(_ context.Context, sub domain.ClockSubmission) (*domain.AttendanceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions++

	if !s.hasEmployee(sub.EmployeeID) {
		return nil, fmt.Errorf("clock in: employee %q: %w", sub.EmployeeID, ports.ErrNotFound)
	}
	if s.openRecord(sub.EmployeeID) >= 0 {
		return nil, fmt.Errorf("clock in: employee %q already clocked in: %w", sub.EmployeeID, ports.ErrConflict)
	}

	rec := domain.AttendanceRecord{
		ID:         uuid.NewString(),
		EmployeeID: sub.EmployeeID,
		ClockInAt:  s.now(),
		ClockInPos: sub.Coordinates,
	}
	s.attendances = append(s.attendances, rec)

	return &domain.AttendanceEvent{
		ID:          rec.ID,
		EmployeeID:  rec.EmployeeID,
		Kind:        domain.ClockIn,
		Coordinates: rec.ClockInPos,
		RecordedAt:  rec.ClockInAt,
	}, nil
}

func (s *Store) ClockOut(_ context.Context, sub domain.ClockSubmission) (*domain.AttendanceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions++

	i := s.openRecord(sub.EmployeeID)
	if i < 0 {
		return nil, fmt.Errorf("clock out: employee %q: %w", sub.EmployeeID, ports.ErrNoOpenAttendance)
	}

	now := s.now()
	pos := sub.Coordinates
	s.attendances[i].ClockOutAt = &now
	s.attendances[i].ClockOutPos = &pos

	return &domain.AttendanceEvent{
		ID:          s.attendances[i].ID,
		EmployeeID:  sub.EmployeeID,
		Kind:        domain.ClockOut,
		Coordinates: pos,
		RecordedAt:  now,
	}, nil
}

func (s *Store) ListAttendances(_ context.Context, f domain.AttendanceFilter) ([]domain.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AttendanceRecord, 0, len(s.attendances))
	for _, a := range s.attendances {
		if f.EmployeeID != "" && a.EmployeeID != f.EmployeeID {
			continue
		}
		if !f.From.IsZero() && a.ClockInAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !a.ClockInAt.Before(f.To) {
			continue
		}
		out = append(out, a)
	}

	// Newest first, like the history screens.
	slices.SortStableFunc(out, func(a, b domain.AttendanceRecord) int { return b.ClockInAt.Compare(a.ClockInAt) })
	return out, nil
}

func (s *Store) hasOffice(id string) bool {
	return slices.ContainsFunc(s.offices, func(o domain.Office) bool { return o.ID == id })
}

func (s *Store) hasEmployee(id string) bool {
	return slices.ContainsFunc(s.employees, func(e domain.Employee) bool { return e.ID == id })
}

// openRecord returns the index of the employee's latest record without a
// clock-out, or -1.
func (s *Store) openRecord(employeeID string) int {
	for i := len(s.attendances) - 1; i >= 0; i-- {
		a := s.attendances[i]
		if a.EmployeeID == employeeID && a.ClockOutAt == nil {
			return i
		}
	}
	return -1
}
