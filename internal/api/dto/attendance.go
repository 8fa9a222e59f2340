package dto

import "time"

type ReportedLocation struct {
	Latitude   *float64   `json:"latitude" validate:"required"`
	Longitude  *float64   `json:"longitude" validate:"required"`
	Accuracy   float64    `json:"accuracy" validate:"gte=0"`
	CapturedAt *time.Time `json:"captured_at"`
}

// Failure reported by the device geolocation API: 1 permission denied,
// 2 position unavailable, 3 timeout.
type ReportedLocationError struct {
	Code    int    `json:"code" validate:"required"`
	Message string `json:"message"`
}

type WiFiAccessPoint struct {
	MACAddress     string `json:"mac_address" validate:"required,mac"`
	SignalStrength int    `json:"signal_strength"`
}

type ClockRequest struct {
	EmployeeID       string                 `json:"employee_id" validate:"required,min=3"`
	Location         *ReportedLocation      `json:"location"`
	LocationError    *ReportedLocationError `json:"location_error"`
	WiFiAccessPoints []WiFiAccessPoint      `json:"wifi_access_points" validate:"omitempty,dive"`
}

// RecordedWIB is RecordedAt rendered as HH:mm WIB.
type AttendanceEventResponse struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employee_id"`
	Kind        string    `json:"kind"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	RecordedAt  time.Time `json:"recorded_at"`
	RecordedWIB string    `json:"recorded_wib"`
}

type NearestOfficeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Body of every clock-in/clock-out response. Which fields are present depends
// on Outcome.
type ClockResponse struct {
	Outcome        string                   `json:"outcome"`
	Message        string                   `json:"message,omitempty"`
	Reason         string                   `json:"reason,omitempty"`
	Attendance     *AttendanceEventResponse `json:"attendance,omitempty"`
	NearestOffice  *NearestOfficeResponse   `json:"nearest_office,omitempty"`
	DistanceMeters *float64                 `json:"distance_meters,omitempty"`
	RadiusMeters   *float64                 `json:"radius_meters,omitempty"`
}

type AttendanceRecordResponse struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employee_id"`
	ClockInAt   time.Time  `json:"clock_in_at"`
	ClockInWIB  string     `json:"clock_in_wib"`
	ClockInLat  float64    `json:"clock_in_latitude"`
	ClockInLon  float64    `json:"clock_in_longitude"`
	ClockOutAt  *time.Time `json:"clock_out_at"`
	ClockOutWIB string     `json:"clock_out_wib,omitempty"`
	ClockOutLat *float64   `json:"clock_out_latitude"`
	ClockOutLon *float64   `json:"clock_out_longitude"`
}

type ListAttendancesResponse struct {
	Attendances []AttendanceRecordResponse `json:"attendances"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DashboardStatsResponse struct {
	Employees     int          `json:"employees"`
	Offices       int          `json:"offices"`
	Shifts        int          `json:"shifts"`
	PresentToday  int          `json:"present_today"`
	ClockedInNow  int          `json:"clocked_in_now"`
	LastSevenDays []DailyCount `json:"last_seven_days"`
}

type SessionResponse struct {
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}
