package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateAnchoredAtStart(t *testing.T) {
	sim := NewSimulator(OpenWater{}, AnalyticDrift{})
	batch, err := sim.Simulate(testStart(), eastbound(), testParams())
	require.NoError(t, err)

	res := Aggregate(batch)
	require.Len(t, res.CentralPath, batch.Steps+1)
	require.Len(t, res.ForecastTimes, batch.Steps+1)

	start := testStart()
	assert.Equal(t, start.Lat, res.CentralPath[0].Lat)
	assert.Equal(t, start.Lon, res.CentralPath[0].Lon)
	assert.Equal(t, start.Lat, res.LeftPath[0].Lat)
	assert.Equal(t, start.Lon, res.LeftPath[0].Lon)
	assert.Equal(t, start.Lat, res.RightPath[0].Lat)
	assert.Equal(t, start.Lon, res.RightPath[0].Lon)
	assert.Zero(t, res.ForecastTimes[0])
}

func TestAggregateConePolygonClosed(t *testing.T) {
	sim := NewSimulator(OpenWater{}, AnalyticDrift{})
	batch, err := sim.Simulate(testStart(), eastbound(), testParams())
	require.NoError(t, err)

	res := Aggregate(batch)
	require.NotEmpty(t, res.ConePolygon)

	first := res.ConePolygon[0]
	last := res.ConePolygon[len(res.ConePolygon)-1]
	assert.Equal(t, first.Lat, last.Lat)
	assert.Equal(t, first.Lon, last.Lon)
}

func TestAggregateConfidenceRadiiMonotonic(t *testing.T) {
	sim := NewSimulator(OpenWater{}, AnalyticDrift{})
	batch, err := sim.Simulate(testStart(), eastbound(), testParams())
	require.NoError(t, err)

	res := Aggregate(batch)
	require.Len(t, res.ConfidenceRings, batch.Steps+1)
	for i, ring := range res.ConfidenceRings {
		assert.GreaterOrEqual(t, ring.Radius90Km, ring.Radius50Km, "step %d", i)
	}
}

func TestAggregateZeroNoiseCollapses(t *testing.T) {
	sim := NewSimulator(OpenWater{}, NoDrift{})
	params := testParams()
	params.HeadingSigmaDeg = 0
	params.SpeedSigmaFrac = 0

	batch, err := sim.Simulate(testStart(), eastbound(), params)
	require.NoError(t, err)

	res := Aggregate(batch)
	for i := range res.CentralPath {
		assert.InDelta(t, res.CentralPath[i].Lat, res.LeftPath[i].Lat, 1e-9)
		assert.InDelta(t, res.CentralPath[i].Lon, res.LeftPath[i].Lon, 1e-9)
		assert.InDelta(t, res.CentralPath[i].Lat, res.RightPath[i].Lat, 1e-9)
		assert.InDelta(t, res.CentralPath[i].Lon, res.RightPath[i].Lon, 1e-9)
		assert.InDelta(t, 0, res.ConfidenceRings[i].Radius50Km, 1e-6)
		assert.InDelta(t, 0, res.ConfidenceRings[i].Radius90Km, 1e-6)
	}
}

func TestAggregateUnnavigableStartDegenerate(t *testing.T) {
	sim := NewSimulator(NewSouthChinaSeaNavigator(), NoDrift{})
	start := Position{Lat: 30, Lon: 110, Time: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}

	batch, err := sim.Simulate(start, eastbound(), testParams())
	require.NoError(t, err)

	res := Aggregate(batch)
	assert.Zero(t, res.TrialsKept)
	require.Len(t, res.CentralPath, batch.Steps+1)
	for i, p := range res.CentralPath {
		assert.Equal(t, start.Lat, p.Lat, "step %d holds the start point", i)
		assert.Equal(t, start.Lon, p.Lon, "step %d holds the start point", i)
	}
	// Still a closed, structurally complete polygon.
	first := res.ConePolygon[0]
	last := res.ConePolygon[len(res.ConePolygon)-1]
	assert.Equal(t, first.Lat, last.Lat)
	assert.Equal(t, first.Lon, last.Lon)
}

func TestAggregateHoldsAfterExtinction(t *testing.T) {
	// A region the vessel outruns after a couple of steps; the re-aim also
	// leaves it, so every trial dies mid-run.
	nav := RegionNavigator{
		Region: Rect{MinLat: 14.5, MaxLat: 15.5, MinLon: 109.9, MaxLon: 110.9},
	}
	sim := NewSimulator(nav, NoDrift{})
	params := testParams()
	params.HeadingSigmaDeg = 0
	params.SpeedSigmaFrac = 0

	start := Position{Lat: 15, Lon: 110, Time: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	batch, err := sim.Simulate(start, eastbound(), params)
	require.NoError(t, err)
	require.Zero(t, batch.KeptAt(batch.Steps))

	res := Aggregate(batch)
	require.Len(t, res.CentralPath, batch.Steps+1)

	// Find the last live step, then every later step repeats its centroid.
	lastLive := -1
	for step := 0; step <= batch.Steps; step++ {
		if batch.KeptAt(step) > 0 {
			lastLive = step
		}
	}
	require.GreaterOrEqual(t, lastLive, 0)
	held := res.CentralPath[lastLive]
	for step := lastLive + 1; step <= batch.Steps; step++ {
		assert.Equal(t, held.Lat, res.CentralPath[step].Lat, "step %d", step)
		assert.Equal(t, held.Lon, res.CentralPath[step].Lon, "step %d", step)
		assert.Equal(t, held.Lat, res.LeftPath[step].Lat, "step %d", step)
		assert.Equal(t, held.Lon, res.RightPath[step].Lon, "step %d", step)
	}
}
