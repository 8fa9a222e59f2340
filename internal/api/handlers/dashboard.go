package handlers

import (
	"attendance-service/internal/api/dto"
	"attendance-service/internal/domain"
	"attendance-service/internal/ports"
	"net/http"
	"time"
)

const statsDays = 7

type DashboardHandler struct {
	Offices   ports.OfficeRegistry
	Employees ports.EmployeeRepository
	Shifts    ports.ShiftRepository
	History   ports.AttendanceRepository
	Now       func() time.Time
}

// Stats feeds the dashboard cards and the weekly attendance chart. Days are
// WIB calendar days; clocked_in_now counts open records from that window.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offices, err := h.Offices.ListOffices(ctx)
	if err != nil {
		writeStoreError(w, r, "dashboard offices", err)
		return
	}
	employees, err := h.Employees.ListEmployees(ctx, "")
	if err != nil {
		writeStoreError(w, r, "dashboard employees", err)
		return
	}
	shifts, err := h.Shifts.ListShifts(ctx)
	if err != nil {
		writeStoreError(w, r, "dashboard shifts", err)
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	wib := domain.Jakarta()
	today := now().In(wib)
	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, wib)
	windowStart := todayStart.AddDate(0, 0, -(statsDays - 1))

	records, err := h.History.ListAttendances(ctx, domain.AttendanceFilter{From: windowStart})
	if err != nil {
		writeStoreError(w, r, "dashboard attendances", err)
		return
	}

	res := dto.DashboardStatsResponse{
		Employees:     len(employees),
		Offices:       len(offices),
		Shifts:        len(shifts),
		LastSevenDays: make([]dto.DailyCount, statsDays),
	}
	index := make(map[string]int, statsDays)
	for i := range statsDays {
		day := windowStart.AddDate(0, 0, i).Format(time.DateOnly)
		res.LastSevenDays[i] = dto.DailyCount{Date: day}
		index[day] = i
	}

	seen := map[string]map[string]bool{}
	presentToday := map[string]bool{}
	for _, rec := range records {
		if rec.ClockOutAt == nil {
			res.ClockedInNow++
		}
		day := rec.ClockInAt.In(wib).Format(time.DateOnly)
		i, ok := index[day]
		if !ok {
			continue
		}
		if seen[day] == nil {
			seen[day] = map[string]bool{}
		}
		if !seen[day][rec.EmployeeID] {
			seen[day][rec.EmployeeID] = true
			res.LastSevenDays[i].Count++
		}
		if !rec.ClockInAt.Before(todayStart) {
			presentToday[rec.EmployeeID] = true
		}
	}
	res.PresentToday = len(presentToday)

	writeJSON(w, r, http.StatusOK, res)
}
