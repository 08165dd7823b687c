package monitor

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "exam-runner"

// Tracer wraps OpenTelemetry tracing for the runner.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer using the global TracerProvider, or a no-op tracer
// when tracing is disabled. SetupTracing installs the provider the CLI uses.
func NewTracer(enabled bool) *Tracer {
	if !enabled {
		return &Tracer{tracer: noop.NewTracerProvider().Tracer(tracerName)}
	}
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

// StartSpan creates a new span and returns the updated context.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, fmt.Sprintf("exam_runner.%s", name),
		trace.WithAttributes(attrs...),
	)
	return ctx, span
}

// SpanFromContext returns the current span from the context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// Common attribute keys for runner tracing.
var (
	AttrRunID    = attribute.Key("exam_runner.run.id")
	AttrExamID   = attribute.Key("exam_runner.exam.id")
	AttrQuestion = attribute.Key("exam_runner.question")
	AttrExitCode = attribute.Key("exam_runner.exit_code")
	AttrState    = attribute.Key("exam_runner.state")
	AttrTestHash = attribute.Key("exam_runner.test_file_hash")
)
