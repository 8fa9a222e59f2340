package handlers

import (
	"attendance-service/internal/adapters/location"
	"attendance-service/internal/adapters/spreadsheet"
	"attendance-service/internal/api/dto"
	"attendance-service/internal/domain"
	"attendance-service/internal/platform/obs"
	"attendance-service/internal/ports"
	"attendance-service/internal/services"
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AttendanceHandler runs the geofenced clock-in/clock-out gate and serves
// the attendance history.
type AttendanceHandler struct {
	Offices   ports.OfficeRegistry
	Store     ports.AttendanceStore
	History   ports.AttendanceRepository
	Employees ports.EmployeeRepository
	Gate      services.GateConfig
	// WiFi builds a server-side positioning sensor from scanned access
	// points. Nil when no positioning provider is configured.
	WiFi func(aps []domain.AccessPoint) ports.LocationSensor
}

func (h *AttendanceHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, domain.ClockIn)
}

func (h *AttendanceHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, domain.ClockOut)
}

func (h *AttendanceHandler) clock(w http.ResponseWriter, r *http.Request, kind domain.ClockKind) {
	var req dto.ClockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// The gate reads a fresh snapshot on every attempt.
	offices, err := h.Offices.ListOffices(r.Context())
	if err != nil {
		log.Printf("list offices for gate failed: req_id=%s err=%v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusServiceUnavailable, "office list is temporarily unavailable")
		return
	}

	out := services.AttemptClockEvent(
		r.Context(),
		services.ClockEventRequest{EmployeeID: strings.TrimSpace(req.EmployeeID), Kind: kind},
		h.sensorFor(req),
		offices,
		h.Store,
		h.Gate,
	)

	status, res := h.clockResponse(r, kind, out)
	writeJSON(w, r, status, res)
}

// sensorFor prefers server-side Wi-Fi positioning when the device sent a
// scan and a provider is configured; otherwise it uses what the device
// reported about its own position.
func (h *AttendanceHandler) sensorFor(req dto.ClockRequest) ports.LocationSensor {
	if len(req.WiFiAccessPoints) > 0 && h.WiFi != nil {
		aps := make([]domain.AccessPoint, 0, len(req.WiFiAccessPoints))
		for _, ap := range req.WiFiAccessPoints {
			aps = append(aps, domain.AccessPoint{MACAddress: ap.MACAddress, SignalStrength: ap.SignalStrength})
		}
		return h.WiFi(aps)
	}

	var report location.Report
	if req.LocationError != nil {
		report.ErrorCode = req.LocationError.Code
		report.ErrorMessage = req.LocationError.Message
	}
	if loc := req.Location; loc != nil {
		fix := domain.Fix{
			Coordinates:    domain.Coordinates{Lat: *loc.Latitude, Lon: *loc.Longitude},
			AccuracyMeters: loc.Accuracy,
		}
		if loc.CapturedAt != nil {
			fix.CapturedAt = *loc.CapturedAt
		}
		report.Fix = &fix
	}
	return location.NewReportedFixSensor(report)
}

func (h *AttendanceHandler) clockResponse(r *http.Request, kind domain.ClockKind, out services.AttendanceOutcome) (int, dto.ClockResponse) {
	res := dto.ClockResponse{Outcome: string(out.Kind), Message: out.Message}
	if out.NearestOffice != nil {
		d := out.DistanceMeters
		res.NearestOffice = &dto.NearestOfficeResponse{ID: out.NearestOffice.ID, Name: out.NearestOffice.Name}
		res.DistanceMeters = &d
	}

	switch out.Kind {
	case services.OutcomeRecorded:
		ev := out.Event
		res.Attendance = &dto.AttendanceEventResponse{
			ID:          ev.ID,
			EmployeeID:  ev.EmployeeID,
			Kind:        string(ev.Kind),
			Latitude:    ev.Coordinates.Lat,
			Longitude:   ev.Coordinates.Lon,
			RecordedAt:  ev.RecordedAt,
			RecordedWIB: domain.FormatWIB(ev.RecordedAt),
		}
		if kind == domain.ClockIn {
			return http.StatusCreated, res
		}
		return http.StatusOK, res

	case services.OutcomeLocationUnavailable:
		res.Reason = string(out.Reason)
		return http.StatusUnprocessableEntity, res

	case services.OutcomeNoOfficeConfigured:
		return http.StatusConflict, res

	case services.OutcomeTooFar:
		radius := h.Gate.RadiusMeters
		res.RadiusMeters = &radius
		return http.StatusForbidden, res
	}

	// Store errors: known rejections get a precise status, anything else is
	// the upstream store failing.
	switch {
	case errors.Is(out.Err, ports.ErrConflict):
		res.Message = "employee is already clocked in"
		return http.StatusConflict, res
	case errors.Is(out.Err, ports.ErrNoOpenAttendance):
		res.Message = "employee has no open clock-in to close"
		return http.StatusConflict, res
	case errors.Is(out.Err, ports.ErrNotFound):
		res.Message = "employee does not exist"
		return http.StatusNotFound, res
	}
	log.Printf("attendance store failed: req_id=%s err=%v", obs.RequestID(r.Context()), out.Err)
	res.Message = "attendance could not be recorded, please try again"
	return http.StatusBadGateway, res
}

// List returns attendance history, filtered by ?employee_id=&from=&to=.
// from and to accept RFC 3339 or a WIB calendar date; a date in to includes
// that whole day.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := attendanceFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.History.ListAttendances(r.Context(), f)
	if err != nil {
		writeStoreError(w, r, "list attendances", err)
		return
	}

	res := dto.ListAttendancesResponse{Attendances: make([]dto.AttendanceRecordResponse, 0, len(records))}
	for _, rec := range records {
		res.Attendances = append(res.Attendances, attendanceRecordResponse(rec))
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Export streams the filtered history as an .xlsx workbook.
func (h *AttendanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, err := attendanceFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.History.ListAttendances(r.Context(), f)
	if err != nil {
		writeStoreError(w, r, "list attendances", err)
		return
	}

	employees, err := h.Employees.ListEmployees(r.Context(), "")
	if err != nil {
		writeStoreError(w, r, "list employees", err)
		return
	}
	byID := make(map[string]domain.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteAttendanceXLSX(&buf, records, byID); err != nil {
		writeStoreError(w, r, "export attendances", err)
		return
	}

	filename := fmt.Sprintf("attendance-%s.xlsx", time.Now().In(domain.Jakarta()).Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("write export failed: req_id=%s err=%v", obs.RequestID(r.Context()), err)
	}
}

func attendanceRecordResponse(rec domain.AttendanceRecord) dto.AttendanceRecordResponse {
	res := dto.AttendanceRecordResponse{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		ClockInAt:  rec.ClockInAt,
		ClockInWIB: domain.FormatWIB(rec.ClockInAt),
		ClockInLat: rec.ClockInPos.Lat,
		ClockInLon: rec.ClockInPos.Lon,
		ClockOutAt: rec.ClockOutAt,
	}
	if rec.ClockOutAt != nil {
		res.ClockOutWIB = domain.FormatWIB(*rec.ClockOutAt)
	}
	if rec.ClockOutPos != nil {
		lat, lon := rec.ClockOutPos.Lat, rec.ClockOutPos.Lon
		res.ClockOutLat, res.ClockOutLon = &lat, &lon
	}
	return res
}

func attendanceFilter(r *http.Request) (domain.AttendanceFilter, error) {
	q := r.URL.Query()
	f := domain.AttendanceFilter{EmployeeID: strings.TrimSpace(q.Get("employee_id"))}

	var err error
	if f.From, err = parseBound(q.Get("from"), false); err != nil {
		return f, fmt.Errorf("from: %w", err)
	}
	if f.To, err = parseBound(q.Get("to"), true); err != nil {
		return f, fmt.Errorf("to: %w", err)
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return f, errors.New("from must be before to")
	}
	return f, nil
}

func parseBound(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, domain.Jakarta())
	if err != nil {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD or RFC 3339, got %q", s)
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1)
	}
	return d, nil
}
