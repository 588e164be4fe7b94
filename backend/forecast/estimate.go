package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultMinSpeedKn and DefaultMaxSpeedKn bound the physically plausible
	// cruise band for the tracked vessel class.
	DefaultMinSpeedKn = 1.0
	DefaultMaxSpeedKn = 20.0

	// defaultSpeedStdKn is used when the history yields a single speed sample.
	defaultSpeedStdKn = 2.0

	// minElapsedHours floors the elapsed time between fixes so a pair of
	// near-simultaneous reports cannot produce an unbounded speed.
	minElapsedHours = 1e-6

	// maxDispersionDeg caps the circular standard deviation when the bearing
	// samples are essentially uniform (resultant length near zero).
	maxDispersionDeg = 180.0
)

// EstimateMotion derives a MotionEstimate from a position history using the
// default speed band. See EstimateMotionBounded.
func EstimateMotion(history []Position) (MotionEstimate, error) {
	return EstimateMotionBounded(history, DefaultMinSpeedKn, DefaultMaxSpeedKn)
}

// EstimateMotionBounded derives base speed, mean heading, and dispersion
// from consecutive pairs of fixes. Bearings are averaged with circular
// statistics: each sample becomes a unit vector and the mean heading is
// recovered with atan2 on the summed components, so headings straddling the
// 0/360 wrap average correctly. Histories with fewer than two usable fixes
// yield the degenerate hold-position estimate, not an error. Out-of-range
// coordinates or timestamps that go backwards are rejected.
func EstimateMotionBounded(history []Position, minSpeedKn, maxSpeedKn float64) (MotionEstimate, error) {
	if minSpeedKn <= 0 || maxSpeedKn <= minSpeedKn {
		return MotionEstimate{}, fmt.Errorf("invalid speed band [%.2f,%.2f]", minSpeedKn, maxSpeedKn)
	}

	for i, p := range history {
		if err := p.Validate(); err != nil {
			return MotionEstimate{}, fmt.Errorf("history[%d]: %w", i, err)
		}
		if i > 0 && p.Time.Before(history[i-1].Time) {
			return MotionEstimate{}, fmt.Errorf("history[%d]: timestamp %s before predecessor %s",
				i, p.Time.Format("2006-01-02T15:04:05Z07:00"), history[i-1].Time.Format("2006-01-02T15:04:05Z07:00"))
		}
	}

	if len(history) < 2 {
		return MotionEstimate{}, nil
	}

	var (
		speeds  []float64
		sumSin  float64
		sumCos  float64
		samples int
	)
	for i := 1; i < len(history); i++ {
		prev, curr := history[i-1], history[i]
		elapsed := curr.Time.Sub(prev.Time).Hours()
		if elapsed < minElapsedHours {
			continue
		}

		distKm := Distance(prev, curr)
		speeds = append(speeds, distKm/KmPerNauticalMile/elapsed)

		bearing := degreesToRadians(InitialBearing(prev, curr))
		sumSin += math.Sin(bearing)
		sumCos += math.Cos(bearing)
		samples++
	}
	if samples == 0 {
		// All fixes effectively simultaneous; same contract as a short history.
		return MotionEstimate{}, nil
	}

	meanSpeed, stdSpeed := stat.MeanStdDev(speeds, nil)
	if len(speeds) < 2 || math.IsNaN(stdSpeed) {
		stdSpeed = defaultSpeedStdKn
	}
	meanSpeed = math.Min(math.Max(meanSpeed, minSpeedKn), maxSpeedKn)

	n := float64(samples)
	heading := wrapHeading(radiansToDegrees(math.Atan2(sumSin/n, sumCos/n)))

	// Mean resultant length; short resultants mean scattered bearings.
	resultant := math.Hypot(sumSin/n, sumCos/n)
	var dispersion float64
	switch {
	case resultant >= 1: // single direction (allow for float error above 1)
		dispersion = 0
	case resultant > 1e-9:
		dispersion = math.Min(radiansToDegrees(math.Sqrt(-2*math.Log(resultant))), maxDispersionDeg)
	default:
		dispersion = maxDispersionDeg
	}

	return MotionEstimate{
		SpeedKn:       meanSpeed,
		SpeedStdKn:    stdSpeed,
		HeadingDeg:    heading,
		DispersionDeg: dispersion,
		Samples:       samples,
	}, nil
}
