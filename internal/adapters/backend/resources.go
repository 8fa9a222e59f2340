package backend

import (
	"attendance-service/internal/domain"
	"attendance-service/internal/platform/obs"
	"attendance-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

func (c *Client) ListOffices(ctx context.Context) (_ []domain.Office, err error) {
	defer obs.Time(ctx, "backend.ListOffices")(&err)

	var raw []officeJSON
	if err := c.getJSON(ctx, "/offices", nil, &raw); err != nil {
		return nil, fmt.Errorf("list offices: %w", err)
	}
	out := make([]domain.Office, 0, len(raw))
	for _, o := range raw {
		out = append(out, o.toDomain())
	}
	return out, nil
}

func (c *Client) GetOffice(ctx context.Context, id string) (_ *domain.Office, err error) {
	defer obs.Time(ctx, "backend.GetOffice")(&err)

	var raw officeJSON
	if err := c.getJSON(ctx, "/offices/"+url.PathEscape(id), nil, &raw); err != nil {
		return nil, fmt.Errorf("get office %q: %w", id, err)
	}
	o := raw.toDomain()
	return &o, nil
}

func (c *Client) CreateOffice(ctx context.Context, o *domain.Office) (err error) {
	defer obs.Time(ctx, "backend.CreateOffice")(&err)

	var raw officeJSON
	if err := c.sendJSON(ctx, http.MethodPost, "/offices", officeToJSON(o), &raw); err != nil {
		return fmt.Errorf("create office: %w", err)
	}
	*o = raw.toDomain()
	return nil
}

func (c *Client) UpdateOffice(ctx context.Context, o *domain.Office) (err error) {
	defer obs.Time(ctx, "backend.UpdateOffice")(&err)

	var raw officeJSON
	if err := c.sendJSON(ctx, http.MethodPut, "/offices/"+url.PathEscape(o.ID), officeToJSON(o), &raw); err != nil {
		return fmt.Errorf("update office %q: %w", o.ID, err)
	}
	*o = raw.toDomain()
	return nil
}

func (c *Client) DeleteOffice(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, "backend.DeleteOffice")(&err)

	if err := c.sendJSON(ctx, http.MethodDelete, "/offices/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete office %q: %w", id, err)
	}
	return nil
}

func (c *Client) ListEmployees(ctx context.Context, officeID string) (_ []domain.Employee, err error) {
	defer obs.Time(ctx, "backend.ListEmployees")(&err)

	var q url.Values
	if officeID != "" {
		q = url.Values{"officeId": {officeID}}
	}

	var raw []employeeJSON
	if err := c.getJSON(ctx, "/employees", q, &raw); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	out := make([]domain.Employee, 0, len(raw))
	for _, e := range raw {
		out = append(out, e.toDomain())
	}
	return out, nil
}

func (c *Client) GetEmployee(ctx context.Context, id string) (_ *domain.Employee, err error) {
	defer obs.Time(ctx, "backend.GetEmployee")(&err)

	var raw employeeJSON
	if err := c.getJSON(ctx, "/employees/"+url.PathEscape(id), nil, &raw); err != nil {
		return nil, fmt.Errorf("get employee %q: %w", id, err)
	}
	e := raw.toDomain()
	return &e, nil
}

func (c *Client) CreateEmployee(ctx context.Context, e *domain.Employee) (err error) {
	defer obs.Time(ctx, "backend.CreateEmployee")(&err)

	var raw employeeJSON
	if err := c.sendJSON(ctx, http.MethodPost, "/employees", employeeToJSON(e), &raw); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	*e = raw.toDomain()
	return nil
}

func (c *Client) UpdateEmployee(ctx context.Context, e *domain.Employee) (err error) {
	defer obs.Time(ctx, "backend.UpdateEmployee")(&err)

	var raw employeeJSON
	if err := c.sendJSON(ctx, http.MethodPut, "/employees/"+url.PathEscape(e.ID), employeeToJSON(e), &raw); err != nil {
		return fmt.Errorf("update employee %q: %w", e.ID, err)
	}
	*e = raw.toDomain()
	return nil
}

func (c *Client) DeleteEmployee(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, "backend.DeleteEmployee")(&err)

	if err := c.sendJSON(ctx, http.MethodDelete, "/employees/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete employee %q: %w", id, err)
	}
	return nil
}

func (c *Client) ListShifts(ctx context.Context) (_ []domain.Shift, err error) {
	defer obs.Time(ctx, "backend.ListShifts")(&err)

	var raw []shiftJSON
	if err := c.getJSON(ctx, "/shifts", nil, &raw); err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	out := make([]domain.Shift, 0, len(raw))
	for _, s := range raw {
		sh, err := s.toDomain()
		if err != nil {
			return nil, fmt.Errorf("list shifts: %w", err)
		}
		out = append(out, sh)
	}
	return out, nil
}

func (c *Client) GetShift(ctx context.Context, id string) (_ *domain.Shift, err error) {
	defer obs.Time(ctx, "backend.GetShift")(&err)

	var raw shiftJSON
	if err := c.getJSON(ctx, "/shifts/"+url.PathEscape(id), nil, &raw); err != nil {
		return nil, fmt.Errorf("get shift %q: %w", id, err)
	}
	s, err := raw.toDomain()
	if err != nil {
		return nil, fmt.Errorf("get shift %q: %w", id, err)
	}
	return &s, nil
}

func (c *Client) CreateShift(ctx context.Context, s *domain.Shift) (err error) {
	defer obs.Time(ctx, "backend.CreateShift")(&err)

	var raw shiftJSON
	if err := c.sendJSON(ctx, http.MethodPost, "/shifts", shiftToJSON(s), &raw); err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	created, err := raw.toDomain()
	if err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	*s = created
	return nil
}

func (c *Client) UpdateShift(ctx context.Context, s *domain.Shift) (err error) {
	defer obs.Time(ctx, "backend.UpdateShift")(&err)

	var raw shiftJSON
	if err := c.sendJSON(ctx, http.MethodPut, "/shifts/"+url.PathEscape(s.ID), shiftToJSON(s), &raw); err != nil {
		return fmt.Errorf("update shift %q: %w", s.ID, err)
	}
	updated, err := raw.toDomain()
	if err != nil {
		return fmt.Errorf("update shift %q: %w", s.ID, err)
	}
	*s = updated
	return nil
}

func (c *Client) DeleteShift(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, "backend.DeleteShift")(&err)

	if err := c.sendJSON(ctx, http.MethodDelete, "/shifts/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete shift %q: %w", id, err)
	}
	return nil
}

// ClockIn posts a new attendance. Sent exactly once.
func (c *Client) ClockIn(ctx context.Context, sub domain.ClockSubmission) (_ *domain.AttendanceEvent, err error) {
	defer obs.Time(ctx, "backend.ClockIn")(&err)

	body := clockJSON{EmployeeID: sub.EmployeeID, Latitude: sub.Coordinates.Lat, Longitude: sub.Coordinates.Lon}
	var raw attendanceJSON
	if err := c.sendJSON(ctx, http.MethodPost, "/attendances", body, &raw); err != nil {
		return nil, fmt.Errorf("clock in employee %q: %w", sub.EmployeeID, err)
	}
	return eventFrom(raw, sub, domain.ClockIn, raw.ClockIn), nil
}

// ClockOut completes the open attendance. Sent exactly once.
func (c *Client) ClockOut(ctx context.Context, sub domain.ClockSubmission) (_ *domain.AttendanceEvent, err error) {
	defer obs.Time(ctx, "backend.ClockOut")(&err)

	body := clockJSON{EmployeeID: sub.EmployeeID, Latitude: sub.Coordinates.Lat, Longitude: sub.Coordinates.Lon}
	var raw attendanceJSON
	if err := c.sendJSON(ctx, http.MethodPut, "/attendances/clock-out", body, &raw); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("clock out employee %q: %w", sub.EmployeeID, ports.ErrNoOpenAttendance)
		}
		return nil, fmt.Errorf("clock out employee %q: %w", sub.EmployeeID, err)
	}

	recorded := time.Time{}
	if raw.ClockOut != nil {
		recorded = *raw.ClockOut
	}
	return eventFrom(raw, sub, domain.ClockOut, recorded), nil
}

func eventFrom(raw attendanceJSON, sub domain.ClockSubmission, kind domain.ClockKind, recorded time.Time) *domain.AttendanceEvent {
	if recorded.IsZero() {
		recorded = time.Now()
	}
	return &domain.AttendanceEvent{
		ID:          raw.ID,
		EmployeeID:  sub.EmployeeID,
		Kind:        kind,
		Coordinates: sub.Coordinates,
		RecordedAt:  recorded,
	}
}

func (c *Client) ListAttendances(ctx context.Context, f domain.AttendanceFilter) (_ []domain.AttendanceRecord, err error) {
	defer obs.Time(ctx, "backend.ListAttendances")(&err)

	q := url.Values{}
	if f.EmployeeID != "" {
		q.Set("employeeId", f.EmployeeID)
	}
	if !f.From.IsZero() {
		q.Set("from", f.From.UTC().Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		q.Set("to", f.To.UTC().Format(time.RFC3339))
	}

	var raw []attendanceJSON
	if err := c.getJSON(ctx, "/attendances", q, &raw); err != nil {
		return nil, fmt.Errorf("list attendances: %w", err)
	}
	out := make([]domain.AttendanceRecord, 0, len(raw))
	for _, a := range raw {
		out = append(out, a.toDomain())
	}
	return out, nil
}
