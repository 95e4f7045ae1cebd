package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAcked    = "acked"
	outcomeRequeued = "requeued"
	outcomeDropped  = "dropped"
)

// metrics tracks how deliveries are settled
type metrics struct {
	tasksTotal   *prometheus.CounterVec
	taskDuration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &metrics{
		tasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analysis_tasks_total",
				Help: "Analysis task deliveries by settlement outcome",
			},
			[]string{"outcome"},
		),
		taskDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "analysis_task_duration_seconds",
				Help:    "Time spent processing one analysis task delivery",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
	}
}

func (m *metrics) observe(outcome string, started time.Time) {
	m.tasksTotal.WithLabelValues(outcome).Inc()
	m.taskDuration.Observe(time.Since(started).Seconds())
}
