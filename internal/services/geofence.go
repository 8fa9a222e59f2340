package services

import (
	"attendance-service/internal/domain"
	"math"
)

// Mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6_371_000.0

// Default geofence radius around each office.
const DefaultRadiusMeters = 30.0

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// DistanceMeters returns the great-circle distance between a and b using the
// haversine formula on a sphere of EarthRadiusMeters.
//
// Inputs are not range-checked: out-of-range degrees still yield a finite,
// non-negative result. Callers validate coordinates at the boundary.
func DistanceMeters(a, b domain.Coordinates) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lon - a.Lon)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	// Rounding can push h a hair outside [0, 1] near antipodes.
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// NearestOffice returns the office closest to point and the distance to it.
// ok is false when offices is empty.
func NearestOffice(point domain.Coordinates, offices []domain.Office) (nearest domain.Office, distance float64, ok bool) {
	if len(offices) == 0 {
		return domain.Office{}, 0, false
	}

	best := -1
	minDistance := math.Inf(1)
	for i, o := range offices {
		d := DistanceMeters(point, o.Coordinates)
		// Strict comparison keeps the first office in list order on ties.
		if d < minDistance {
			minDistance = d
			best = i
		}
	}

	if best < 0 {
		// Every distance was NaN; fall back to the first office.
		return offices[0], DistanceMeters(point, offices[0].Coordinates), true
	}

	return offices[best], minDistance, true
}

// EvaluateGeofence decides whether point lies within radiusMeters of the
// nearest office. The boundary is inclusive. With no offices the decision has
// no NearestOffice and is never within radius.
func EvaluateGeofence(point domain.Coordinates, offices []domain.Office, radiusMeters float64) domain.GeofenceDecision {
	office, distance, ok := NearestOffice(point, offices)
	if !ok {
		return domain.GeofenceDecision{}
	}

	return domain.GeofenceDecision{
		NearestOffice:  &office,
		DistanceMeters: distance,
		WithinRadius:   distance <= radiusMeters,
	}
}
