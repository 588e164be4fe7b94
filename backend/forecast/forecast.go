// Package forecast implements probabilistic trajectory forecasting for
// tracked vessels: motion estimation from sparse fix histories, a
// constrained Monte Carlo path simulator, and aggregation of trial batches
// into a central path with calibrated uncertainty bounds.
package forecast

import (
	"fmt"
	"math"
	"time"
)

// Options drives the composite Forecast call.
type Options struct {
	HoursAhead float64
	StepHours  float64
	Trials     int

	// HeadingSigmaDeg < 0 derives the heading noise from the estimate's
	// circular dispersion; 0 disables heading noise entirely.
	HeadingSigmaDeg float64
	SpeedSigmaFrac  float64

	MinSpeedKn float64
	MaxSpeedKn float64
	Seed       uint64
}

// DefaultOptions mirrors the forecast defaults of the original tracker:
// 48 hours ahead in 3-hour steps across 500 trials, heading noise derived
// from the history.
func DefaultOptions() Options {
	return Options{
		HoursAhead:      48,
		StepHours:       3,
		Trials:          500,
		HeadingSigmaDeg: -1,
		SpeedSigmaFrac:  0.3,
		MinSpeedKn:      DefaultMinSpeedKn,
		MaxSpeedKn:      DefaultMaxSpeedKn,
		Seed:            42,
	}
}

// Forecast chains estimation, simulation, and aggregation for a vessel
// history. Degenerate-but-valid inputs (short history, simultaneous fixes,
// unnavigable start) yield a degenerate single-point result, never an
// error; malformed input (bad coordinates, non-monotonic timestamps,
// nonsensical options) is rejected.
func (s *Simulator) Forecast(history []Position, opts Options) (*Result, error) {
	began := time.Now()

	steps := int(math.Floor(opts.HoursAhead / opts.StepHours))
	if opts.StepHours <= 0 || steps < 1 {
		return nil, fmt.Errorf("horizon %.1fh with %.1fh steps yields no forecast steps", opts.HoursAhead, opts.StepHours)
	}

	est, err := EstimateMotionBounded(history, opts.MinSpeedKn, opts.MaxSpeedKn)
	if err != nil {
		forecastsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("estimate motion: %w", err)
	}

	if est.Hold() {
		start := Position{}
		if len(history) > 0 {
			start = history[len(history)-1]
		}
		s.logger.Info("history too sparse for motion estimate, holding position",
			"fixes", len(history))
		forecastsTotal.WithLabelValues("degenerate").Inc()
		return degenerateResult(start, steps, opts.StepHours), nil
	}
	start := history[len(history)-1]

	headingSigma := opts.HeadingSigmaDeg
	if headingSigma < 0 {
		headingSigma = est.DispersionDeg
	}

	batch, err := s.Simulate(start, est, SimParams{
		Trials:          opts.Trials,
		Steps:           steps,
		StepHours:       opts.StepHours,
		HeadingSigmaDeg: headingSigma,
		SpeedSigmaFrac:  opts.SpeedSigmaFrac,
		MinSpeedKn:      opts.MinSpeedKn,
		MaxSpeedKn:      opts.MaxSpeedKn,
		Seed:            opts.Seed,
	})
	if err != nil {
		forecastsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	res := Aggregate(batch)
	if res.TrialsKept == 0 {
		forecastsTotal.WithLabelValues("degenerate").Inc()
	} else {
		forecastsTotal.WithLabelValues("ok").Inc()
	}
	forecastDuration.Observe(time.Since(began).Seconds())
	return res, nil
}

// degenerateResult is the structurally complete "no feasible forecast"
// value: the start position repeated at every step with zero-radius rings.
func degenerateResult(start Position, steps int, stepHours float64) *Result {
	res := &Result{
		CentralPath:     make([]Position, 0, steps+1),
		LeftPath:        make([]Position, 0, steps+1),
		RightPath:       make([]Position, 0, steps+1),
		ForecastTimes:   make([]float64, 0, steps+1),
		ConfidenceRings: make([]ConfidenceRing, 0, steps+1),
	}
	for step := 0; step <= steps; step++ {
		hours := float64(step) * stepHours
		p := start
		p.Time = start.Time.Add(time.Duration(hours * float64(time.Hour)))
		res.CentralPath = append(res.CentralPath, p)
		res.LeftPath = append(res.LeftPath, p)
		res.RightPath = append(res.RightPath, p)
		res.ForecastTimes = append(res.ForecastTimes, hours)
		res.ConfidenceRings = append(res.ConfidenceRings, ConfidenceRing{HoursAhead: hours})
	}
	res.ConePolygon = closeCone(res.LeftPath, res.RightPath)
	return res
}
