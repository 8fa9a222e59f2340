package api

import (
	"attendance-service/internal/api/handlers"
	"attendance-service/internal/domain"
	"attendance-service/internal/ports"
	"attendance-service/internal/services"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps are the ports the HTTP layer is wired against. Revoker and WiFi are
// optional.
type Deps struct {
	Offices    ports.OfficeRepository
	Employees  ports.EmployeeRepository
	Shifts     ports.ShiftRepository
	Attendance ports.AttendanceStore
	History    ports.AttendanceRepository
	Sessions   ports.SessionValidator
	Revoker    ports.TokenRevoker
	WiFi       func(aps []domain.AccessPoint) ports.LocationSensor
	Gate       services.GateConfig
	CookieName string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	officeHandler := &handlers.OfficeHandler{Repo: d.Offices, Employees: d.Employees}
	employeeHandler := &handlers.EmployeeHandler{Repo: d.Employees}
	shiftHandler := &handlers.ShiftHandler{Repo: d.Shifts}
	attendanceHandler := &handlers.AttendanceHandler{
		Offices:   d.Offices,
		Store:     d.Attendance,
		History:   d.History,
		Employees: d.Employees,
		Gate:      d.Gate,
		WiFi:      d.WiFi,
	}
	dashboardHandler := &handlers.DashboardHandler{
		Offices:   d.Offices,
		Employees: d.Employees,
		Shifts:    d.Shifts,
		History:   d.History,
	}
	authHandler := &handlers.AuthHandler{Revoker: d.Revoker, CookieName: d.CookieName}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware, middleware.Recoverer)
	r.NotFound(jsonStatus(http.StatusNotFound, "not found"))
	r.MethodNotAllowed(jsonStatus(http.StatusMethodNotAllowed, "method not allowed"))

	// Public: the check-in page needs offices and the gate without a session.
	r.Get("/health", handlers.Health)
	r.Get("/offices", officeHandler.List)
	r.Get("/offices/{id}", officeHandler.Get)
	r.Post("/attendances/clock-in", attendanceHandler.ClockIn)
	r.Post("/attendances/clock-out", attendanceHandler.ClockOut)

	r.Group(func(r chi.Router) {
		r.Use(requireSession(d.Sessions, d.CookieName))

		r.Get("/auth/session", authHandler.Session)
		r.Post("/auth/logout", authHandler.Logout)

		r.Post("/offices", officeHandler.Create)
		r.Put("/offices/{id}", officeHandler.Update)
		r.Delete("/offices/{id}", officeHandler.Delete)
		r.Get("/offices/{id}/employees", officeHandler.ListEmployees)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", employeeHandler.List)
			r.Post("/", employeeHandler.Create)
			r.Post("/import", employeeHandler.Import)
			r.Get("/{id}", employeeHandler.Get)
			r.Put("/{id}", employeeHandler.Update)
			r.Delete("/{id}", employeeHandler.Delete)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", shiftHandler.List)
			r.Post("/", shiftHandler.Create)
			r.Get("/{id}", shiftHandler.Get)
			r.Put("/{id}", shiftHandler.Update)
			r.Delete("/{id}", shiftHandler.Delete)
		})

		r.Get("/attendances", attendanceHandler.List)
		r.Get("/attendances/export", attendanceHandler.Export)
		r.Get("/dashboard/stats", dashboardHandler.Stats)
	})

	return r
}

func jsonStatus(status int, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
	}
}
