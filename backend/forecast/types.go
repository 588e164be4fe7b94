package forecast

import (
	"fmt"
	"time"
)

// Position is a single georeferenced fix for a tracked vessel. Speed and
// depth are carried through from ingestion when present but the engine does
// not require them.
type Position struct {
	Lat     float64   `json:"latitude"`
	Lon     float64   `json:"longitude"`
	Time    time.Time `json:"timestamp"`
	SpeedKn float64   `json:"speed,omitempty"`
	DepthM  float64   `json:"depth,omitempty"`
}

// Validate checks that the position's coordinates are within range.
func (p Position) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %.4f out of range [-90,90]", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %.4f out of range [-180,180]", p.Lon)
	}
	return nil
}

// MotionEstimate summarizes a vessel's recent motion: base speed in knots,
// mean heading in degrees [0,360), and the circular dispersion of the
// observed bearings. It is recomputed per forecast call and never stored.
type MotionEstimate struct {
	SpeedKn       float64
	SpeedStdKn    float64
	HeadingDeg    float64
	DispersionDeg float64
	Samples       int
}

// Hold reports whether the estimate is the degenerate "hold position" value
// produced for histories with fewer than two usable fixes.
func (m MotionEstimate) Hold() bool {
	return m.Samples == 0
}

// ConfidenceRing gives the radii from a forecast step's centroid that
// contain 50% and 90% of the surviving trials at that step.
type ConfidenceRing struct {
	HoursAhead float64 `json:"time"`
	Radius50Km float64 `json:"radius_50"`
	Radius90Km float64 `json:"radius_90"`
}

// Result is the aggregated output of one forecast call. The JSON field
// names form the schema boundary consumed by the API and map layers.
type Result struct {
	CentralPath     []Position       `json:"central_path"`
	LeftPath        []Position       `json:"left_path"`
	RightPath       []Position       `json:"right_path"`
	ForecastTimes   []float64        `json:"forecast_times"`
	ConePolygon     []Position       `json:"cone_polygon"`
	ConfidenceRings []ConfidenceRing `json:"confidence_rings"`
	TrialsKept      int              `json:"trials_kept"`
}
