package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blogapi"

// Prometheus records store queries and GraphQL operations into a private registry.
type Prometheus struct {
	registry   *prometheus.Registry
	queries    *prometheus.HistogramVec
	queryErrs  *prometheus.CounterVec
	operations *prometheus.HistogramVec
	opErrs     *prometheus.CounterVec
}

// NewPrometheus registers the collector's metric families on a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_duration_seconds",
			Help:      "Duration of SQL statements issued by the store.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"table", "operation"}),
		queryErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_errors_total",
			Help:      "SQL statements that returned an error.",
		}, []string{"table", "operation"}),
		operations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graphql",
			Name:      "operation_duration_seconds",
			Help:      "Duration of executed GraphQL operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "name"}),
		opErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graphql",
			Name:      "errors_total",
			Help:      "GraphQL errors returned to clients.",
		}, []string{"kind", "name"}),
	}
	p.registry.MustRegister(p.queries, p.queryErrs, p.operations, p.opErrs)
	return p
}

// RecordQuery implements Collector.
func (p *Prometheus) RecordQuery(table, operation string, duration time.Duration, err error) {
	p.queries.WithLabelValues(table, operation).Observe(duration.Seconds())
	if err != nil {
		p.queryErrs.WithLabelValues(table, operation).Inc()
	}
}

// RecordOperation implements Collector.
func (p *Prometheus) RecordOperation(kind, name string, duration time.Duration, errorCount int) {
	if name == "" {
		name = "anonymous"
	}
	p.operations.WithLabelValues(kind, name).Observe(duration.Seconds())
	if errorCount > 0 {
		p.opErrs.WithLabelValues(kind, name).Add(float64(errorCount))
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
