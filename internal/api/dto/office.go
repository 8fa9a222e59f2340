package dto

import "time"

// Office create/update body. Coordinates are pointers so a missing value is
// told apart from the equator or the prime meridian.
type OfficeRequest struct {
	Name        string   `json:"name" validate:"required,min=2"`
	Address     string   `json:"address" validate:"required,min=5"`
	Description string   `json:"description" validate:"required,min=5"`
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
}

type OfficeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListOfficesResponse struct {
	Offices []OfficeResponse `json:"offices"`
}
