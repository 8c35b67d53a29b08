package hierarchy

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vistree_hierarchy_cache_requests_total",
		Help: "Hierarchy cache lookups by cache and result (hit, miss, error, abandoned)",
	}, []string{"cache", "result"})

	providerQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vistree_hierarchy_queries_total",
		Help: "Provider queries issued by the hierarchy cache",
	}, []string{"query"})
)

var (
	tracerOnce sync.Once
	tracer     trace.Tracer
)

// getTracer returns the package tracer, resolved lazily from the global
// provider so hosts can install one after import.
func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		tracer = otel.Tracer("vistree/hierarchy")
	})
	return tracer
}
