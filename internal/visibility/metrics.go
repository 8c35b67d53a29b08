package visibility

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	statusDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vistree_visibility_status_duration_seconds",
		Help:    "Visibility status resolution duration by node kind",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
	}, []string{"kind"})

	visibilityChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vistree_visibility_changes_total",
		Help: "Visibility changes by node kind and target state",
	}, []string{"kind", "target"})
)

var (
	tracerOnce sync.Once
	tracer     trace.Tracer
)

func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		tracer = otel.Tracer("vistree/visibility")
	})
	return tracer
}

func targetLabel(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
