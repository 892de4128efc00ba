// Package geospatial holds pure spherical-geometry primitives. Inputs are
// decimal degrees; callers are responsible for passing well-formed
// coordinates (lat in [-90,90], lon in [-180,180]).
package geospatial

import "math"

// earthRadiusMeters is the spherical Earth approximation used throughout.
const earthRadiusMeters = 6371000.0

// Haversine calculates the great-circle distance in meters between two
// points. Symmetric; zero iff both points are equal.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// Bearing returns the initial compass heading in degrees [0,360) travelling
// from point 1 toward point 2 along the great circle. Coincident points
// yield 0.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	rLat1 := toRad(lat1)
	rLat2 := toRad(lat2)
	dLon := toRad(lon2 - lon1)

	y := math.Sin(dLon) * math.Cos(rLat2)
	x := math.Cos(rLat1)*math.Sin(rLat2) - math.Sin(rLat1)*math.Cos(rLat2)*math.Cos(dLon)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Interpolate linearly interpolates between two points in lat/lon space.
// This is intentionally cheap — a simulation aid, not a navigation
// primitive — and is exact at the endpoints: frac 0 returns point 1,
// frac 1 returns point 2.
func Interpolate(lat1, lon1, lat2, lon2, frac float64) (lat, lon float64) {
	return lat1 + (lat2-lat1)*frac, lon1 + (lon2-lon1)*frac
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
