package fleet

import "seatrack/backend/forecast"

// BaseDetectionRadiusKm is how close a fix must be to a base before the
// vessel is considered in port.
const BaseDetectionRadiusKm = 5.0

// Bases maps known naval bases to their positions.
var Bases = map[string]forecast.Position{
	"Yulin":         {Lat: 18.2253, Lon: 109.5292},
	"Paracel":       {Lat: 16.5000, Lon: 112.0000},
	"Jianggezhuang": {Lat: 36.1108, Lon: 120.5758},
	"Xiaopingdao":   {Lat: 38.8179, Lon: 121.4944},
	"Lushunkou":     {Lat: 38.8453, Lon: 121.2781},
	"Huludao":       {Lat: 40.7153, Lon: 121.0103},
}

// NearestBase returns the closest base and its distance in kilometers.
func NearestBase(lat, lon float64) (string, float64) {
	var (
		bestName string
		bestKm   = -1.0
	)
	p := forecast.Position{Lat: lat, Lon: lon}
	for name, base := range Bases {
		if d := forecast.Distance(p, base); bestKm < 0 || d < bestKm {
			bestName, bestKm = name, d
		}
	}
	return bestName, bestKm
}
