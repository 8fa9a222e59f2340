package dto

import "time"

type ShiftRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	ClockIn  string `json:"clock_in" validate:"required,hhmm"`
	ClockOut string `json:"clock_out" validate:"required,hhmm"`
}

type ShiftResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ClockIn   string    `json:"clock_in"`
	ClockOut  string    `json:"clock_out"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListShiftsResponse struct {
	Shifts []ShiftResponse `json:"shifts"`
}
