package metrics

import "time"

// Collector captures lightweight instrumentation for store and GraphQL operations.
type Collector interface {
	RecordQuery(table, operation string, duration time.Duration, err error)
	RecordOperation(kind, name string, duration time.Duration, errorCount int)
}

// NoopCollector discards all metrics.
type NoopCollector struct{}

// RecordQuery implements Collector.
func (NoopCollector) RecordQuery(string, string, time.Duration, error) {}

// RecordOperation implements Collector.
func (NoopCollector) RecordOperation(string, string, time.Duration, int) {}

// MultiCollector fans events out to multiple collectors.
type MultiCollector []Collector

// RecordQuery implements Collector.
func (mc MultiCollector) RecordQuery(table, operation string, duration time.Duration, err error) {
	for _, c := range mc {
		if c != nil {
			c.RecordQuery(table, operation, duration, err)
		}
	}
}

// RecordOperation implements Collector.
func (mc MultiCollector) RecordOperation(kind, name string, duration time.Duration, errorCount int) {
	for _, c := range mc {
		if c != nil {
			c.RecordOperation(kind, name, duration, errorCount)
		}
	}
}

// WithCollector returns a collector that fans out to all provided collectors.
func WithCollector(primary Collector, others ...Collector) Collector {
	collectors := make([]Collector, 0, 1+len(others))
	if primary != nil {
		collectors = append(collectors, primary)
	}
	for _, c := range others {
		if c != nil {
			collectors = append(collectors, c)
		}
	}
	switch len(collectors) {
	case 0:
		return NoopCollector{}
	case 1:
		return collectors[0]
	default:
		return MultiCollector(collectors)
	}
}
