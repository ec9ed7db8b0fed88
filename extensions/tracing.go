package extensions

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	scoped "github.com/pumped-fn/scoped-go"
)

const tracerName = "github.com/pumped-fn/scoped-go"

// TracingExtension starts an OpenTelemetry span for every build, invalidation
// and disposal. Builds triggered from inside a factory nest under the span of
// the provider being built.
type TracingExtension struct {
	scoped.BaseExtension
	tracer trace.Tracer

	// Service, when set, is recorded as service.name on every span.
	Service string
}

// NewTracingExtension creates a tracing extension using tp.
func NewTracingExtension(tp trace.TracerProvider) *TracingExtension {
	return &TracingExtension{
		BaseExtension: scoped.NewBaseExtension("tracing"),
		tracer:        tp.Tracer(tracerName),
	}
}

// Order places tracing ahead of the default extensions so their work is
// recorded inside the span.
func (e *TracingExtension) Order() int {
	return 10
}

func (e *TracingExtension) Wrap(ctx context.Context, next func(context.Context) (any, error), op *scoped.Operation) (any, error) {
	attrs := []attribute.KeyValue{
		attribute.String("scoped.operation", string(op.Kind)),
		attribute.String("scoped.scope", op.Scope.ID()),
		attribute.Int("scoped.depth", op.Scope.Depth()),
	}
	if op.Provider != nil {
		attrs = append(attrs, attribute.String("scoped.provider", op.Provider.String()))
	}
	if op.Owner != nil {
		attrs = append(attrs, attribute.String("scoped.owner", op.Owner.ID()))
	}
	if e.Service != "" {
		attrs = append(attrs, attribute.String("service.name", e.Service))
	}

	ctx, span := e.tracer.Start(ctx, spanName(op), trace.WithAttributes(attrs...))
	defer span.End()

	result, err := next(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func spanName(op *scoped.Operation) string {
	if op.Provider == nil {
		return "scoped." + string(op.Kind)
	}
	return "scoped." + string(op.Kind) + " " + op.Provider.String()
}
