package dto

import "time"

type EmployeeRequest struct {
	// Optional on create; the store assigns one when empty.
	ID       string `json:"id" validate:"omitempty,min=3,max=64"`
	Name     string `json:"name" validate:"required,min=2"`
	Position string `json:"position" validate:"required,min=2"`
	Contact  string `json:"contact" validate:"required,min=10"`
	OfficeID string `json:"office_id" validate:"required"`
}

type EmployeeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	Contact   string    `json:"contact"`
	OfficeID  string    `json:"office_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListEmployeesResponse struct {
	Employees []EmployeeResponse `json:"employees"`
}

type ImportRowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type ImportEmployeesResponse struct {
	Created []EmployeeResponse `json:"created"`
	Errors  []ImportRowError   `json:"errors"`
}
