// Package metrics exposes analysis run metrics to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "effnets_runs_total",
		Help: "Analysis runs by final status.",
	}, []string{"status"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "effnets_run_duration_seconds",
		Help:    "Wall time of one analysis run.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	})

	FailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "effnets_failures_total",
		Help: "Isolated failures recorded during runs, by kind.",
	}, []string{"kind"})

	Score = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "effnets_score",
		Help: "Latest score of an alternative for one weighting and scenario.",
	}, []string{"stakeholder", "scenario", "alternative"})

	IndicatorValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "effnets_indicator_value",
		Help: "Latest indicator value of an alternative in one scenario.",
	}, []string{"scenario", "criterion", "alternative"})

	ConsistencyRatio = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "effnets_consistency_ratio",
		Help: "Consistency ratio of a stakeholder's comparison matrix.",
	}, []string{"stakeholder", "matrix"})
)

// RecordScore sets the score gauge of one alternative.
func RecordScore(stakeholder, scenario string, alternative int, v float64) {
	Score.WithLabelValues(stakeholder, scenario, strconv.Itoa(alternative)).Set(v)
}

// RecordIndicator sets the indicator gauge of one alternative.
func RecordIndicator(scenario int, criterion string, alternative int, v float64) {
	IndicatorValue.WithLabelValues(strconv.Itoa(scenario), criterion, strconv.Itoa(alternative)).Set(v)
}
