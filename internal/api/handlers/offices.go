package handlers

import (
	"attendance-service/internal/api/dto"
	"attendance-service/internal/domain"
	"attendance-service/internal/ports"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// OfficeHandler manages the offices geofences are drawn around.
type OfficeHandler struct {
	Repo      ports.OfficeRepository
	Employees ports.EmployeeRepository
}

func officeResponse(o domain.Office) dto.OfficeResponse {
	return dto.OfficeResponse{
		ID:          o.ID,
		Name:        o.Name,
		Address:     o.Address,
		Description: o.Description,
		Latitude:    o.Coordinates.Lat,
		Longitude:   o.Coordinates.Lon,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func officeFromRequest(id string, req dto.OfficeRequest) *domain.Office {
	return &domain.Office{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Address:     strings.TrimSpace(req.Address),
		Description: strings.TrimSpace(req.Description),
		Coordinates: domain.Coordinates{Lat: *req.Latitude, Lon: *req.Longitude},
	}
}

func (h *OfficeHandler) List(w http.ResponseWriter, r *http.Request) {
	offices, err := h.Repo.ListOffices(r.Context())
	if err != nil {
		writeStoreError(w, r, "list offices", err)
		return
	}

	res := dto.ListOfficesResponse{Offices: make([]dto.OfficeResponse, 0, len(offices))}
	for _, o := range offices {
		res.Offices = append(res.Offices, officeResponse(o))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *OfficeHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.Repo.GetOffice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, "get office", err)
		return
	}
	writeJSON(w, r, http.StatusOK, officeResponse(*o))
}

func (h *OfficeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.OfficeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o := officeFromRequest("", req)
	if err := h.Repo.CreateOffice(r.Context(), o); err != nil {
		writeStoreError(w, r, "create office", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, officeResponse(*o))
}

func (h *OfficeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.OfficeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o := officeFromRequest(chi.URLParam(r, "id"), req)
	if err := h.Repo.UpdateOffice(r.Context(), o); err != nil {
		writeStoreError(w, r, "update office", err)
		return
	}
	writeJSON(w, r, http.StatusOK, officeResponse(*o))
}

// Delete refuses with 409 while employees are still assigned to the office.
func (h *OfficeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteOffice(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, "delete office", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEmployees returns the employees assigned to one office.
func (h *OfficeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Repo.GetOffice(r.Context(), id); err != nil {
		writeStoreError(w, r, "get office", err)
		return
	}

	employees, err := h.Employees.ListEmployees(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "list office employees", err)
		return
	}
	writeJSON(w, r, http.StatusOK, employeesResponse(employees))
}
