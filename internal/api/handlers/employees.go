package handlers

import (
	"attendance-service/internal/adapters/spreadsheet"
	"attendance-service/internal/api/dto"
	"attendance-service/internal/domain"
	"attendance-service/internal/ports"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxRosterBytes = 10 << 20

type EmployeeHandler struct {
	Repo ports.EmployeeRepository
}

func employeeResponse(e domain.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:        e.ID,
		Name:      e.Name,
		Position:  e.Position,
		Contact:   e.Contact,
		OfficeID:  e.OfficeID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func employeesResponse(employees []domain.Employee) dto.ListEmployeesResponse {
	res := dto.ListEmployeesResponse{Employees: make([]dto.EmployeeResponse, 0, len(employees))}
	for _, e := range employees {
		res.Employees = append(res.Employees, employeeResponse(e))
	}
	return res
}

func employeeFromRequest(id string, req dto.EmployeeRequest) *domain.Employee {
	return &domain.Employee{
		ID:       id,
		Name:     strings.TrimSpace(req.Name),
		Position: strings.TrimSpace(req.Position),
		Contact:  strings.TrimSpace(req.Contact),
		OfficeID: strings.TrimSpace(req.OfficeID),
	}
}

// List supports ?office_id= to narrow the result to one office.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Repo.ListEmployees(r.Context(), strings.TrimSpace(r.URL.Query().Get("office_id")))
	if err != nil {
		writeStoreError(w, r, "list employees", err)
		return
	}
	writeJSON(w, r, http.StatusOK, employeesResponse(employees))
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.Repo.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, "get employee", err)
		return
	}
	writeJSON(w, r, http.StatusOK, employeeResponse(*e))
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.EmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	e := employeeFromRequest(strings.TrimSpace(req.ID), req)
	if err := h.Repo.CreateEmployee(r.Context(), e); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusUnprocessableEntity, "office does not exist")
			return
		}
		writeStoreError(w, r, "create employee", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, employeeResponse(*e))
}

// Update replaces the employee at {id}; a body id, if present, is ignored.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.EmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	e := employeeFromRequest(chi.URLParam(r, "id"), req)
	if err := h.Repo.UpdateEmployee(r.Context(), e); err != nil {
		writeStoreError(w, r, "update employee", err)
		return
	}
	writeJSON(w, r, http.StatusOK, employeeResponse(*e))
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, "delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import creates employees from an uploaded roster (multipart field "file",
// .xlsx or .xls). Each row is validated like a create request; bad rows are
// reported with their spreadsheet line and the rest are still created.
func (h *EmployeeHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRosterBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	rows, err := spreadsheet.ParseRoster(file, header.Filename)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res := dto.ImportEmployeesResponse{
		Created: make([]dto.EmployeeResponse, 0, len(rows)),
		Errors:  []dto.ImportRowError{},
	}
	for _, row := range rows {
		req := dto.EmployeeRequest{
			ID:       row.ID,
			Name:     row.Name,
			Position: row.Position,
			Contact:  row.Contact,
			OfficeID: row.OfficeID,
		}
		if err := validate.Struct(req); err != nil {
			res.Errors = append(res.Errors, dto.ImportRowError{Line: row.Line, Error: rowValidationMessage(err)})
			continue
		}

		e := employeeFromRequest(row.ID, req)
		if err := h.Repo.CreateEmployee(r.Context(), e); err != nil {
			res.Errors = append(res.Errors, dto.ImportRowError{Line: row.Line, Error: rowStoreMessage(err)})
			continue
		}
		res.Created = append(res.Created, employeeResponse(*e))
	}

	status := http.StatusCreated
	if len(res.Created) == 0 && len(res.Errors) > 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, r, status, res)
}

func rowValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid row"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s %s", fieldPath(fe), fieldMessage(fe)))
	}
	return strings.Join(parts, "; ")
}

func rowStoreMessage(err error) string {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return "office does not exist"
	case errors.Is(err, ports.ErrConflict):
		return "employee id already exists"
	}
	return "could not be saved"
}
