package forecast

import "math"

// DriftModel returns the background current at a coordinate as a coordinate
// bias in degrees per hour. Implementations must be deterministic in their
// inputs; the simulator applies the bias identically to every trial.
type DriftModel interface {
	Drift(lat, lon float64) (dLatPerHour, dLonPerHour float64)
}

// AnalyticDrift is a coarse analytic stand-in for a real ocean-current
// dataset: a small bias (order 0.1 km/h) varying smoothly with position.
type AnalyticDrift struct {
	// BaseDeg is the bias magnitude in degrees per hour. Zero means the
	// package default of 0.001 (about 0.1 km/h at the equator).
	BaseDeg float64
}

// Drift implements DriftModel.
func (d AnalyticDrift) Drift(lat, lon float64) (float64, float64) {
	base := d.BaseDeg
	if base == 0 {
		base = 0.001
	}
	dLat := base * math.Sin(degreesToRadians(2*lat))
	dLon := base * math.Cos(degreesToRadians(2*lon))
	return dLat, dLon
}

// NoDrift is a DriftModel with no background current.
type NoDrift struct{}

// Drift implements DriftModel.
func (NoDrift) Drift(lat, lon float64) (float64, float64) { return 0, 0 }
