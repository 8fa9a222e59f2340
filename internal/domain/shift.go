package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Wall-clock time of day with minute precision, written as HH:mm.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses a 24-hour "HH:mm" string.
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return ClockTime{}, fmt.Errorf("parse clock time %q: want HH:mm", s)
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return ClockTime{}, fmt.Errorf("parse clock time %q: hour must be 00-23", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("parse clock time %q: minute must be 00-59", s)
	}

	return ClockTime{Hour: h, Minute: m}, nil
}

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

func (c ClockTime) minutes() int { return c.Hour*60 + c.Minute }

// A named working window, e.g. "Pagi" 08:00-16:00.
type Shift struct {
	ID        string
	Name      string
	ClockIn   ClockTime
	ClockOut  ClockTime
	CreatedAt time.Time
	UpdatedAt time.Time
}

// On anchors the shift to the calendar day of date in loc.
// A clock-out earlier than the clock-in is an overnight shift ending the next day.
func (s Shift) On(date time.Time, loc *time.Location) (start, end time.Time) {
	d := date.In(loc)
	start = time.Date(d.Year(), d.Month(), d.Day(), s.ClockIn.Hour, s.ClockIn.Minute, 0, 0, loc)
	end = time.Date(d.Year(), d.Month(), d.Day(), s.ClockOut.Hour, s.ClockOut.Minute, 0, 0, loc)
	if s.ClockOut.minutes() <= s.ClockIn.minutes() {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}
