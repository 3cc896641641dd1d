package geo

import "strings"

// DefaultPrecision is the geohash precision used when exposing a profile's
// location publicly. Six characters is roughly ±0.61 km, coarse enough that
// a suggestion preview never pinpoints a user's exact position.
const DefaultPrecision = 6

// base32 is the geohash base32 alphabet (excludes 'a', 'i', 'l', 'o').
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// validGeohashChars is a lookup map for valid geohash characters.
var validGeohashChars = map[rune]bool{
	'0': true, '1': true, '2': true, '3': true, '4': true,
	'5': true, '6': true, '7': true, '8': true, '9': true,
	'b': true, 'c': true, 'd': true, 'e': true, 'f': true,
	'g': true, 'h': true, 'j': true, 'k': true, 'm': true,
	'n': true, 'p': true, 'q': true, 'r': true, 's': true,
	't': true, 'u': true, 'v': true, 'w': true, 'x': true,
	'y': true, 'z': true,
}

// Encode encodes latitude and longitude into a geohash string with the
// given precision using the standard interleaved base32 algorithm.
func Encode(lat, lng float64, precision int) string {
	if precision < 1 {
		precision = DefaultPrecision
	}

	latRange := [2]float64{-90.0, 90.0}
	lngRange := [2]float64{-180.0, 180.0}

	var geohash strings.Builder
	geohash.Grow(precision)

	bits := 0
	var ch uint

	even := true
	for geohash.Len() < precision {
		if even {
			mid := (lngRange[0] + lngRange[1]) / 2
			if lng > mid {
				ch |= (1 << (4 - bits))
				lngRange[0] = mid
			} else {
				lngRange[1] = mid
			}
		} else {
			mid := (latRange[0] + latRange[1]) / 2
			if lat > mid {
				ch |= (1 << (4 - bits))
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}

		even = !even
		bits++

		if bits == 5 {
			geohash.WriteByte(base32[ch])
			bits = 0
			ch = 0
		}
	}

	return geohash.String()
}

// CoarseLocation encodes a coordinate pair at the default public precision.
// This is what suggestion previews expose instead of raw coordinates.
func CoarseLocation(lat, lng float64) string {
	return Encode(lat, lng, DefaultPrecision)
}

// RoundGeohash truncates a geohash to the given precision for privacy.
// Returns the empty string for empty input, invalid characters, or a
// precision below 1. Input shorter than the precision is returned
// normalized to lowercase.
func RoundGeohash(input string, precision int) string {
	if input == "" {
		return ""
	}

	if precision < 1 {
		return ""
	}

	lower := strings.ToLower(input)

	for _, c := range lower {
		if !validGeohashChars[c] {
			return ""
		}
	}

	if len(lower) <= precision {
		return lower
	}

	return lower[:precision]
}
