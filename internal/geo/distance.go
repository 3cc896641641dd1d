// Package geo provides geolocation utilities: great-circle distance for
// proximity scoring and geohash encoding for privacy-preserving coarse
// location display.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DistanceKm computes the haversine (great-circle) distance in kilometers
// between two WGS84 coordinate pairs.
//
// Inputs are expected to be in valid ranges (lat in [-90, 90], lng in
// [-180, 180]); out-of-range values are not validated and produce
// meaningless output. Callers that accept user input must validate first.
//
// The function is pure and symmetric: DistanceKm(a, b) == DistanceKm(b, a).
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// ValidCoordinates reports whether a latitude/longitude pair is within
// valid WGS84 ranges.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// toRadians converts degrees to radians.
func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
