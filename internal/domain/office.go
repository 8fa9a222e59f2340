package domain

import "time"

// Represents a registered office a geofence is drawn around.
// The office registry owns the lifecycle; the attendance gate only reads
// snapshots of the list.
type Office struct {
	ID          string
	Name        string
	Address     string
	Description string
	Coordinates Coordinates
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Represents a person who clocks in and out at one of the offices.
type Employee struct {
	ID        string
	Name      string
	Position  string
	Contact   string
	OfficeID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
