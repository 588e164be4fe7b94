package forecast

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// reaimOffsetDeg is the fixed heading deflection tried once when a stepped
// position turns out to be off-water before the trial is retired.
const reaimOffsetDeg = 45.0

// SimParams controls one simulation run.
type SimParams struct {
	Trials          int
	Steps           int
	StepHours       float64
	HeadingSigmaDeg float64
	SpeedSigmaFrac  float64
	MinSpeedKn      float64
	MaxSpeedKn      float64
	Seed            uint64
}

// Validate rejects malformed parameter sets.
func (p SimParams) Validate() error {
	if p.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", p.Trials)
	}
	if p.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", p.Steps)
	}
	if p.StepHours <= 0 {
		return fmt.Errorf("step duration must be positive, got %.2f", p.StepHours)
	}
	if p.HeadingSigmaDeg < 0 || p.SpeedSigmaFrac < 0 {
		return fmt.Errorf("noise sigmas must be non-negative")
	}
	if p.MinSpeedKn <= 0 || p.MaxSpeedKn <= p.MinSpeedKn {
		return fmt.Errorf("invalid speed band [%.2f,%.2f]", p.MinSpeedKn, p.MaxSpeedKn)
	}
	return nil
}

// trialState is the mutable per-trial state while a run advances. It lives
// only for the duration of one Simulate call and is owned by a single worker.
type trialState struct {
	pos     Position
	heading float64
	speed   float64
	alive   bool
}

// Batch holds every trial's positions across all steps of one run. Step 0 is
// the shared start position. A trial's positions at steps >= its death step
// are unset and must not be read; iterate with AliveAt or ForEachAlive.
type Batch struct {
	Start     Position
	StepHours float64
	Steps     int
	Trials    int

	// positions[trial][step], valid only for step < deadAt[trial].
	positions [][]Position
	// deadAt[trial] is the first step the trial was no longer alive at;
	// Steps+1 if it survived the whole run.
	deadAt []int
}

// KeptAt returns the number of trials alive at the given step.
func (b *Batch) KeptAt(step int) int {
	n := 0
	for _, d := range b.deadAt {
		if d > step {
			n++
		}
	}
	return n
}

// ForEachAlive calls fn with each trial position alive at the given step.
func (b *Batch) ForEachAlive(step int, fn func(Position)) {
	for t, d := range b.deadAt {
		if d > step {
			fn(b.positions[t][step])
		}
	}
}

// Simulator advances batches of independent trial trajectories through the
// navigability and drift models. It holds no per-run state, so a single
// Simulator is safe for concurrent forecast calls.
type Simulator struct {
	nav     Navigator
	drift   DriftModel
	logger  *slog.Logger
	workers int
}

// NewSimulator builds a Simulator around the given navigability and drift
// models. Nil models default to open water and no current.
func NewSimulator(nav Navigator, drift DriftModel) *Simulator {
	if nav == nil {
		nav = OpenWater{}
	}
	if drift == nil {
		drift = NoDrift{}
	}
	return &Simulator{
		nav:     nav,
		drift:   drift,
		logger:  slog.Default(),
		workers: runtime.GOMAXPROCS(0),
	}
}

// WithLogger configures structured logging.
func (s *Simulator) WithLogger(logger *slog.Logger) *Simulator {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithWorkers caps the number of goroutines used per run.
func (s *Simulator) WithWorkers(n int) *Simulator {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Simulate runs params.Trials independent trajectories of params.Steps steps
// from start, seeded with the motion estimate. Each step perturbs the
// trial's heading and speed, projects along the great circle, applies drift,
// and tests navigability; an off-water position gets one re-aim attempt at a
// fixed deflection before the trial is retired for the rest of the run.
//
// Trials never read each other's state, so the batch is split into chunks
// advanced by independent workers; Simulate returns only after every worker
// finishes, which is the synchronization barrier the aggregator relies on.
//
// An unnavigable start is not an error: the returned batch simply has zero
// surviving trials.
func (s *Simulator) Simulate(start Position, est MotionEstimate, params SimParams) (*Batch, error) {
	if err := start.Validate(); err != nil {
		return nil, fmt.Errorf("start position: %w", err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("simulation params: %w", err)
	}

	batch := &Batch{
		Start:     start,
		StepHours: params.StepHours,
		Steps:     params.Steps,
		Trials:    params.Trials,
		positions: make([][]Position, params.Trials),
		deadAt:    make([]int, params.Trials),
	}
	for t := range batch.positions {
		batch.positions[t] = make([]Position, params.Steps+1)
		batch.positions[t][0] = start
	}

	if !s.nav.Navigable(start.Lat, start.Lon) {
		s.logger.Warn("start position not navigable, returning empty batch",
			"lat", start.Lat, "lon", start.Lon)
		trialsPruned.Add(float64(params.Trials))
		return batch, nil
	}

	began := time.Now()

	chunk := (params.Trials + s.workers - 1) / s.workers
	var wg sync.WaitGroup
	for lo := 0; lo < params.Trials; lo += chunk {
		hi := lo + chunk
		if hi > params.Trials {
			hi = params.Trials
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			s.runChunk(batch, est, params, lo, hi)
		}(lo, hi)
	}
	wg.Wait()

	kept := batch.KeptAt(params.Steps)
	trialsPruned.Add(float64(params.Trials - kept))
	simulateDuration.Observe(time.Since(began).Seconds())
	s.logger.Debug("simulation complete",
		"trials", params.Trials, "steps", params.Steps, "kept", kept)

	return batch, nil
}

// runChunk advances trials [lo,hi) through every step with a worker-local
// random stream derived from the run seed, keeping runs reproducible
// regardless of worker count.
func (s *Simulator) runChunk(batch *Batch, est MotionEstimate, params SimParams, lo, hi int) {
	headingNoise := distuv.Normal{Mu: 0, Sigma: params.HeadingSigmaDeg}
	speedNoise := distuv.Normal{Mu: 1, Sigma: params.SpeedSigmaFrac}

	for t := lo; t < hi; t++ {
		src := rand.NewSource(params.Seed + uint64(t)*0x9e3779b9)
		headingNoise.Src = src
		speedNoise.Src = src

		state := trialState{
			pos:     batch.Start,
			heading: est.HeadingDeg,
			speed:   math.Min(math.Max(est.SpeedKn, params.MinSpeedKn), params.MaxSpeedKn),
			alive:   true,
		}

		batch.deadAt[t] = params.Steps + 1
		for step := 1; step <= params.Steps; step++ {
			if params.HeadingSigmaDeg > 0 {
				state.heading = wrapHeading(state.heading + headingNoise.Rand())
			}
			if params.SpeedSigmaFrac > 0 {
				state.speed = math.Min(math.Max(state.speed*speedNoise.Rand(), params.MinSpeedKn), params.MaxSpeedKn)
			}

			next, ok := s.advance(state.pos, state.heading, state.speed, params.StepHours)
			if !ok {
				// One-shot recovery: re-aim away from the obstruction.
				deflected := wrapHeading(state.heading + reaimOffsetDeg)
				next, ok = s.advance(state.pos, deflected, state.speed, params.StepHours)
				if ok {
					state.heading = deflected
				}
			}
			if !ok {
				state.alive = false
				batch.deadAt[t] = step
				break
			}

			next.Time = batch.Start.Time.Add(time.Duration(float64(step) * params.StepHours * float64(time.Hour)))
			state.pos = next
			batch.positions[t][step] = next
		}
	}
}

// advance projects one step from pos and applies drift, returning the new
// position and whether it is navigable.
func (s *Simulator) advance(pos Position, headingDeg, speedKn, stepHours float64) (Position, bool) {
	next := Destination(pos, headingDeg, speedKn*KmPerNauticalMile*stepHours)

	dLat, dLon := s.drift.Drift(next.Lat, next.Lon)
	next.Lat = clampLat(next.Lat + dLat*stepHours)
	next.Lon = normalizeLon(next.Lon + dLon*stepHours)

	return next, s.nav.Navigable(next.Lat, next.Lon)
}
