package forecast

import "github.com/prometheus/client_golang/prometheus"

var (
	simulateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "seatrack_simulate_duration_seconds",
		Help:    "Time spent advancing one Monte Carlo batch.",
		Buckets: prometheus.DefBuckets,
	})

	forecastDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "seatrack_forecast_duration_seconds",
		Help:    "End-to-end time for one forecast call.",
		Buckets: prometheus.DefBuckets,
	})

	trialsPruned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seatrack_trials_pruned_total",
		Help: "Trials retired for leaving the navigable region.",
	})

	forecastsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seatrack_forecasts_total",
		Help: "Forecast calls by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(simulateDuration, forecastDuration, trialsPruned, forecastsTotal)
}
