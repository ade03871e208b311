package tracing

import "context"

// Attribute represents a key/value pair attached to a span.
type Attribute struct {
	Key   string
	Value any
}

// Span represents an in-flight tracing span.
type Span interface {
	End(err error)
}

// Tracer starts spans for database queries and GraphQL operations.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// NoopTracer discards all tracing events.
type NoopTracer struct{}

// Start implements Tracer.
func (NoopTracer) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

type fanoutTracer []Tracer

func (f fanoutTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	spans := make(fanoutSpan, 0, len(f))
	for _, tracer := range f {
		var span Span
		ctx, span = tracer.Start(ctx, name, attrs...)
		if span != nil {
			spans = append(spans, span)
		}
	}
	return ctx, spans
}

type fanoutSpan []Span

func (fs fanoutSpan) End(err error) {
	for _, span := range fs {
		span.End(err)
	}
}

// WithTracer combines the non-nil tracers into one. It never returns nil.
func WithTracer(primary Tracer, others ...Tracer) Tracer {
	tracers := make(fanoutTracer, 0, 1+len(others))
	for _, t := range append([]Tracer{primary}, others...) {
		if t != nil {
			tracers = append(tracers, t)
		}
	}
	switch len(tracers) {
	case 0:
		return NoopTracer{}
	case 1:
		return tracers[0]
	default:
		return tracers
	}
}

// String attribute helper.
func String(key, value string) Attribute { return Attribute{Key: key, Value: value} }

// Int attribute helper.
func Int(key string, value int) Attribute { return Attribute{Key: key, Value: value} }

// Bool attribute helper.
func Bool(key string, value bool) Attribute { return Attribute{Key: key, Value: value} }
