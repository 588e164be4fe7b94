package forecast

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Aggregate reduces a simulation batch into the forecast result consumed by
// the API and map layers. Per step it produces the centroid of surviving
// trials, per-axis 5th/95th percentile bound paths, and 50/90 confidence
// radii measured as distance-from-centroid percentiles.
//
// The per-axis percentile bounds are an intentional approximation of the
// true confidence region: latitude and longitude are ranked independently,
// not radially. The centroid is likewise a plain coordinate mean rather than
// a geodesic mean; at forecast scales the difference is negligible.
//
// Steps at which no trial survives (including the whole run, when the start
// itself was unnavigable) are filled with the last valid step's central
// point so consumers always receive a structurally complete result.
func Aggregate(batch *Batch) *Result {
	res := &Result{
		CentralPath:     make([]Position, 0, batch.Steps+1),
		LeftPath:        make([]Position, 0, batch.Steps+1),
		RightPath:       make([]Position, 0, batch.Steps+1),
		ForecastTimes:   make([]float64, 0, batch.Steps+1),
		ConfidenceRings: make([]ConfidenceRing, 0, batch.Steps+1),
		TrialsKept:      batch.KeptAt(batch.Steps),
	}

	lastCenter := batch.Start
	lastRing := ConfidenceRing{}

	for step := 0; step <= batch.Steps; step++ {
		hours := float64(step) * batch.StepHours
		at := batch.Start.Time.Add(time.Duration(hours * float64(time.Hour)))
		res.ForecastTimes = append(res.ForecastTimes, hours)

		kept := batch.KeptAt(step)
		if kept == 0 {
			// Extinct from here on: hold the last valid central point.
			held := lastCenter
			held.Time = at
			ring := lastRing
			ring.HoursAhead = hours
			res.CentralPath = append(res.CentralPath, held)
			res.LeftPath = append(res.LeftPath, held)
			res.RightPath = append(res.RightPath, held)
			res.ConfidenceRings = append(res.ConfidenceRings, ring)
			continue
		}

		lats := make([]float64, 0, kept)
		lons := make([]float64, 0, kept)
		batch.ForEachAlive(step, func(p Position) {
			lats = append(lats, p.Lat)
			lons = append(lons, p.Lon)
		})

		center := Position{Lat: stat.Mean(lats, nil), Lon: stat.Mean(lons, nil), Time: at}

		dists := make([]float64, 0, kept)
		batch.ForEachAlive(step, func(p Position) {
			dists = append(dists, Distance(center, p))
		})
		sort.Float64s(dists)
		ring := ConfidenceRing{
			HoursAhead: hours,
			Radius50Km: stat.Quantile(0.50, stat.Empirical, dists, nil),
			Radius90Km: stat.Quantile(0.90, stat.Empirical, dists, nil),
		}

		sort.Float64s(lats)
		sort.Float64s(lons)
		left := Position{
			Lat:  stat.Quantile(0.05, stat.Empirical, lats, nil),
			Lon:  stat.Quantile(0.05, stat.Empirical, lons, nil),
			Time: at,
		}
		right := Position{
			Lat:  stat.Quantile(0.95, stat.Empirical, lats, nil),
			Lon:  stat.Quantile(0.95, stat.Empirical, lons, nil),
			Time: at,
		}

		res.CentralPath = append(res.CentralPath, center)
		res.LeftPath = append(res.LeftPath, left)
		res.RightPath = append(res.RightPath, right)
		res.ConfidenceRings = append(res.ConfidenceRings, ring)

		lastCenter = center
		lastRing = ring
	}

	res.ConePolygon = closeCone(res.LeftPath, res.RightPath)
	return res
}

// closeCone joins the right bound with the reversed left bound into a closed
// ring (first point repeated as last).
func closeCone(left, right []Position) []Position {
	ring := make([]Position, 0, len(left)+len(right)+1)
	ring = append(ring, right...)
	for i := len(left) - 1; i >= 0; i-- {
		ring = append(ring, left[i])
	}
	if len(ring) > 0 && !samePoint(ring[0], ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}
	return ring
}

func samePoint(a, b Position) bool {
	return a.Lat == b.Lat && a.Lon == b.Lon
}
