package backend

import (
	"attendance-service/internal/domain"
	"fmt"
	"time"
)

// Backend payloads use camelCase keys.

type officeJSON struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

func officeToJSON(o *domain.Office) officeJSON {
	return officeJSON{
		ID:          o.ID,
		Name:        o.Name,
		Address:     o.Address,
		Description: o.Description,
		Latitude:    o.Coordinates.Lat,
		Longitude:   o.Coordinates.Lon,
	}
}

func (j officeJSON) toDomain() domain.Office {
	return domain.Office{
		ID:          j.ID,
		Name:        j.Name,
		Address:     j.Address,
		Description: j.Description,
		Coordinates: domain.Coordinates{Lat: j.Latitude, Lon: j.Longitude},
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

type employeeJSON struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	Contact   string    `json:"contact"`
	OfficeID  string    `json:"officeId"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

func employeeToJSON(e *domain.Employee) employeeJSON {
	return employeeJSON{ID: e.ID, Name: e.Name, Position: e.Position, Contact: e.Contact, OfficeID: e.OfficeID}
}

func (j employeeJSON) toDomain() domain.Employee {
	return domain.Employee{
		ID:        j.ID,
		Name:      j.Name,
		Position:  j.Position,
		Contact:   j.Contact,
		OfficeID:  j.OfficeID,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

type shiftJSON struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	ClockIn   string    `json:"clockIn"`
	ClockOut  string    `json:"clockOut"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

func shiftToJSON(s *domain.Shift) shiftJSON {
	return shiftJSON{ID: s.ID, Name: s.Name, ClockIn: s.ClockIn.String(), ClockOut: s.ClockOut.String()}
}

func (j shiftJSON) toDomain() (domain.Shift, error) {
	in, err := domain.ParseClockTime(j.ClockIn)
	if err != nil {
		return domain.Shift{}, fmt.Errorf("shift %s: %w", j.ID, err)
	}
	out, err := domain.ParseClockTime(j.ClockOut)
	if err != nil {
		return domain.Shift{}, fmt.Errorf("shift %s: %w", j.ID, err)
	}
	return domain.Shift{ID: j.ID, Name: j.Name, ClockIn: in, ClockOut: out, CreatedAt: j.CreatedAt, UpdatedAt: j.UpdatedAt}, nil
}

// Body of POST /attendances and PUT /attendances/clock-out.
type clockJSON struct {
	EmployeeID string  `json:"employeeId"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

type attendanceJSON struct {
	ID                string     `json:"id"`
	EmployeeID        string     `json:"employeeId"`
	ClockIn           time.Time  `json:"clockIn"`
	ClockInLatitude   float64    `json:"clockInLatitude"`
	ClockInLongitude  float64    `json:"clockInLongitude"`
	ClockOut          *time.Time `json:"clockOut"`
	ClockOutLatitude  *float64   `json:"clockOutLatitude"`
	ClockOutLongitude *float64   `json:"clockOutLongitude"`
}

func (j attendanceJSON) toDomain() domain.AttendanceRecord {
	r := domain.AttendanceRecord{
		ID:         j.ID,
		EmployeeID: j.EmployeeID,
		ClockInAt:  j.ClockIn,
		ClockInPos: domain.Coordinates{Lat: j.ClockInLatitude, Lon: j.ClockInLongitude},
		ClockOutAt: j.ClockOut,
	}
	if j.ClockOut != nil && j.ClockOutLatitude != nil && j.ClockOutLongitude != nil {
		r.ClockOutPos = &domain.Coordinates{Lat: *j.ClockOutLatitude, Lon: *j.ClockOutLongitude}
	}
	return r
}
