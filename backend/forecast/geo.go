package forecast

import "math"

const (
	earthRadiusKm = 6371.0
	// KmPerNauticalMile converts nautical miles (and hence knot-hours) to km.
	KmPerNauticalMile = 1.852
)

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// normalizeLon wraps a longitude into [-180,180).
func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// wrapHeading wraps a heading into [0,360).
func wrapHeading(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func clampLat(lat float64) float64 {
	if lat > 90 {
		return 90
	}
	if lat < -90 {
		return -90
	}
	return lat
}

// Distance returns the great-circle distance in kilometers between two
// positions using the haversine formula on a mean-Earth-radius sphere.
func Distance(a, b Position) float64 {
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLon := degreesToRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// InitialBearing returns the compass bearing in degrees [0,360) from a
// toward b along the great circle. When a and b coincide the result is 0.
func InitialBearing(a, b Position) float64 {
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)
	dLon := degreesToRadians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	bearing := radiansToDegrees(math.Atan2(y, x))

	return wrapHeading(bearing)
}

// Destination projects p forward by distanceKm along the given bearing and
// returns the new position with its longitude normalized into [-180,180).
// The timestamp is copied from p; callers advance it separately.
func Destination(p Position, bearingDeg, distanceKm float64) Position {
	lat1 := degreesToRadians(p.Lat)
	lon1 := degreesToRadians(p.Lon)
	bearing := degreesToRadians(bearingDeg)
	d := distanceKm / earthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(math.Sin(bearing)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	return Position{
		Lat:  clampLat(radiansToDegrees(lat2)),
		Lon:  normalizeLon(radiansToDegrees(lon2)),
		Time: p.Time,
	}
}
