package forecast

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eastboundHistory(n int) []Position {
	base := Position{Lat: 15, Lon: 110, Time: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	history := []Position{base}
	for i := 1; i < n; i++ {
		next := Destination(history[i-1], 90, 8*KmPerNauticalMile*3)
		next.Time = history[i-1].Time.Add(3 * time.Hour)
		history = append(history, next)
	}
	return history
}

func TestForecastEndToEnd(t *testing.T) {
	sim := NewSimulator(NewSouthChinaSeaNavigator(), AnalyticDrift{})
	opts := DefaultOptions()
	opts.HoursAhead = 24
	opts.Trials = 300

	res, err := sim.Forecast(eastboundHistory(5), opts)
	require.NoError(t, err)

	steps := int(opts.HoursAhead / opts.StepHours)
	require.Len(t, res.CentralPath, steps+1)
	require.Len(t, res.ForecastTimes, steps+1)
	require.Len(t, res.ConfidenceRings, steps+1)
	assert.Greater(t, res.TrialsKept, 0)

	// Uncertainty grows with the horizon.
	lastRing := res.ConfidenceRings[len(res.ConfidenceRings)-1]
	assert.Greater(t, lastRing.Radius90Km, res.ConfidenceRings[1].Radius90Km)
}

func TestForecastShortHistoryDegenerates(t *testing.T) {
	sim := NewSimulator(NewSouthChinaSeaNavigator(), AnalyticDrift{})
	opts := DefaultOptions()

	for _, history := range [][]Position{nil, eastboundHistory(1)} {
		res, err := sim.Forecast(history, opts)
		require.NoError(t, err, "degenerate history is not an error")
		require.NotNil(t, res)
		assert.Zero(t, res.TrialsKept)

		steps := int(opts.HoursAhead / opts.StepHours)
		require.Len(t, res.CentralPath, steps+1)
		first := res.ConePolygon[0]
		last := res.ConePolygon[len(res.ConePolygon)-1]
		assert.Equal(t, first.Lat, last.Lat)
		assert.Equal(t, first.Lon, last.Lon)
	}
}

func TestForecastRejectsBadOptions(t *testing.T) {
	sim := NewSimulator(OpenWater{}, NoDrift{})

	opts := DefaultOptions()
	opts.StepHours = 0
	_, err := sim.Forecast(eastboundHistory(3), opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.HoursAhead = 1 // below one step
	_, err = sim.Forecast(eastboundHistory(3), opts)
	assert.Error(t, err)
}

func TestResultJSONSchema(t *testing.T) {
	// The JSON field names are the contract consumed by map layers.
	sim := NewSimulator(OpenWater{}, NoDrift{})
	opts := DefaultOptions()
	opts.HoursAhead = 6
	opts.StepHours = 3
	opts.Trials = 50

	res, err := sim.Forecast(eastboundHistory(3), opts)
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, field := range []string{
		"central_path", "left_path", "right_path",
		"forecast_times", "cone_polygon", "confidence_rings", "trials_kept",
	} {
		assert.Contains(t, decoded, field)
	}

	var rings []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded["confidence_rings"], &rings))
	require.NotEmpty(t, rings)
	assert.Contains(t, rings[0], "time")
	assert.Contains(t, rings[0], "radius_50")
	assert.Contains(t, rings[0], "radius_90")
}
