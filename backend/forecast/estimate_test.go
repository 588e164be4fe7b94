package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fix(lat, lon float64, hoursAfter float64) Position {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return Position{Lat: lat, Lon: lon, Time: base.Add(time.Duration(hoursAfter * float64(time.Hour)))}
}

func TestEstimateMotionEastward(t *testing.T) {
	// Two fixes 6 hours apart, roughly 89 km due east at 15N: about 8 knots.
	history := []Position{
		fix(15, 110, 0),
		Destination(fix(15, 110, 0), 90, 8*KmPerNauticalMile*6),
	}
	history[1].Time = history[0].Time.Add(6 * time.Hour)

	est, err := EstimateMotion(history)
	require.NoError(t, err)
	require.False(t, est.Hold())

	assert.InDelta(t, 8, est.SpeedKn, 0.1)
	assert.InDelta(t, 90, est.HeadingDeg, 1.0)
	assert.Equal(t, 1, est.Samples)
}

func TestEstimateMotionCircularMean(t *testing.T) {
	// Bearings 350 and 10 must average to 0, not 180.
	start := fix(15, 112, 0)
	p1 := Destination(start, 350, 50)
	p1.Time = start.Time.Add(3 * time.Hour)
	p2 := Destination(p1, 10, 50)
	p2.Time = p1.Time.Add(3 * time.Hour)

	est, err := EstimateMotion([]Position{start, p1, p2})
	require.NoError(t, err)

	diff := est.HeadingDeg
	if diff > 180 {
		diff -= 360
	}
	assert.InDelta(t, 0, diff, 2.0, "circular mean of 350 and 10 is 0")
	assert.Greater(t, est.DispersionDeg, 0.0)
}

func TestEstimateMotionDegenerateHistories(t *testing.T) {
	empty, err := EstimateMotion(nil)
	require.NoError(t, err)
	assert.True(t, empty.Hold())

	single, err := EstimateMotion([]Position{fix(15, 110, 0)})
	require.NoError(t, err)
	assert.True(t, single.Hold())
}

func TestEstimateMotionSimultaneousFixes(t *testing.T) {
	// All fixes at the same instant: no usable pair, hold position.
	history := []Position{fix(15, 110, 0), fix(15.5, 110.5, 0), fix(16, 111, 0)}
	est, err := EstimateMotion(history)
	require.NoError(t, err)
	assert.True(t, est.Hold())
}

func TestEstimateMotionSpeedClamped(t *testing.T) {
	// 500 km in one hour is far beyond the speed band.
	history := []Position{
		fix(10, 110, 0),
		fix(10, 114.55, 1),
	}
	est, err := EstimateMotion(history)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxSpeedKn, est.SpeedKn)
}

func TestEstimateMotionRejectsInvalidInput(t *testing.T) {
	_, err := EstimateMotion([]Position{fix(95, 110, 0), fix(15, 110, 1)})
	assert.Error(t, err, "latitude out of range")

	backwards := []Position{fix(15, 110, 5), fix(15.2, 110, 1)}
	_, err = EstimateMotion(backwards)
	assert.Error(t, err, "timestamps must be non-decreasing")

	_, err = EstimateMotionBounded([]Position{fix(15, 110, 0)}, 10, 5)
	assert.Error(t, err, "inverted speed band")
}
