package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (latitude, longitude) in signed degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Validate reports whether the coordinates fall inside the WGS84 degree ranges.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return fmt.Errorf("coordinates: NaN component (lat=%v lon=%v)", c.Lat, c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("coordinates: latitude %v out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("coordinates: longitude %v out of range [-180, 180]", c.Lon)
	}
	return nil
}

// IsZero reports the (0,0) point. It is a valid coordinate (Gulf of Guinea)
// but clients without a fix have been seen sending it.
func (c Coordinates) IsZero() bool { return c.Lat == 0 && c.Lon == 0 }

func (c Coordinates) String() string { return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lon) }
