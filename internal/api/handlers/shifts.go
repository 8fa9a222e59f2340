package handlers

import (
	"attendance-service/internal/api/dto"
	"attendance-service/internal/domain"
	"attendance-service/internal/ports"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type ShiftHandler struct {
	Repo ports.ShiftRepository
}

func shiftResponse(s domain.Shift) dto.ShiftResponse {
	return dto.ShiftResponse{
		ID:        s.ID,
		Name:      s.Name,
		ClockIn:   s.ClockIn.String(),
		ClockOut:  s.ClockOut.String(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// shiftFromRequest assumes the request passed validation, so both clock
// times parse.
func shiftFromRequest(id string, req dto.ShiftRequest) *domain.Shift {
	in, _ := domain.ParseClockTime(req.ClockIn)
	out, _ := domain.ParseClockTime(req.ClockOut)
	return &domain.Shift{
		ID:       id,
		Name:     strings.TrimSpace(req.Name),
		ClockIn:  in,
		ClockOut: out,
	}
}

func (h *ShiftHandler) List(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Repo.ListShifts(r.Context())
	if err != nil {
		writeStoreError(w, r, "list shifts", err)
		return
	}

	res := dto.ListShiftsResponse{Shifts: make([]dto.ShiftResponse, 0, len(shifts))}
	for _, s := range shifts {
		res.Shifts = append(res.Shifts, shiftResponse(s))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *ShiftHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Repo.GetShift(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, "get shift", err)
		return
	}
	writeJSON(w, r, http.StatusOK, shiftResponse(*s))
}

func (h *ShiftHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ShiftRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s := shiftFromRequest("", req)
	if err := h.Repo.CreateShift(r.Context(), s); err != nil {
		writeStoreError(w, r, "create shift", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, shiftResponse(*s))
}

func (h *ShiftHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.ShiftRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s := shiftFromRequest(chi.URLParam(r, "id"), req)
	if err := h.Repo.UpdateShift(r.Context(), s); err != nil {
		writeStoreError(w, r, "update shift", err)
		return
	}
	writeJSON(w, r, http.StatusOK, shiftResponse(*s))
}

func (h *ShiftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteShift(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, "delete shift", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
