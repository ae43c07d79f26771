// File: internal/geo/distance.go
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMiles is the sphere radius used for every distance in the system.
const EarthRadiusMiles = 3959.0

// DistanceTolerance absorbs floating point noise so that a point exactly on
// the radius is still inside it.
const DistanceTolerance = 1e-6

// Distance returns the haversine great-circle distance in miles.
func Distance(a, b Coordinates) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	return EarthRadiusMiles * 2 * math.Asin(math.Sqrt(math.Min(1, h)))
}

// Within reports whether b lies within radiusMiles of a, inclusive.
func Within(a, b Coordinates, radiusMiles float64) bool {
	return Distance(a, b) <= radiusMiles+DistanceTolerance
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceSQL is the same haversine formula as a SQL expression over the
// given latitude/longitude columns. It carries three placeholders, bound in
// order to the origin latitude, origin latitude and origin longitude (see
// DistanceArgs).
func DistanceSQL(latColumn, lonColumn string) string {
	return fmt.Sprintf(
		"(%[3]v * 2 * ASIN(SQRT(POWER(SIN(RADIANS(%[1]s - ?) / 2), 2) + COS(RADIANS(?)) * COS(RADIANS(%[1]s)) * POWER(SIN(RADIANS(%[2]s - ?) / 2), 2))))",
		latColumn, lonColumn, EarthRadiusMiles,
	)
}

// DistanceArgs returns the bound parameters for DistanceSQL.
func DistanceArgs(origin Coordinates) []interface{} {
	return []interface{}{origin.Latitude, origin.Latitude, origin.Longitude}
}
