// Package observability wires OpenTelemetry tracing and the global logger
// for cohortdata.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans produced by this module.
const InstrumentationName = "github.com/ajitpratap0/cohortdata"

// Tracer returns a tracer from the global provider. Before Initialize
// enables tracing it is a no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// Span wraps a trace.Span and batches attributes until End.
type Span struct {
	span       trace.Span
	attributes []attribute.KeyValue
}

// NewSpan starts a span on the global tracer.
func NewSpan(ctx context.Context, operationName string) (context.Context, *Span) {
	return StartSpan(ctx, Tracer(), operationName)
}

// StartSpan starts a span on t.
func StartSpan(ctx context.Context, t trace.Tracer, operationName string) (context.Context, *Span) {
	ctx, span := t.Start(ctx, operationName)
	return ctx, &Span{span: span}
}

// SetAttribute adds an attribute to the span. Attributes are applied on End.
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	case []string:
		attr = attribute.StringSlice(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}

	s.attributes = append(s.attributes, attr)
}

// AddEvent adds an event to the span
func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetStatus sets the span status
func (s *Span) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}

// Finish records err (if any) as the span status.
func (s *Span) Finish(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		s.SetAttribute("error", true)
		return
	}
	s.span.SetStatus(codes.Ok, "")
}

// End applies batched attributes and ends the span.
func (s *Span) End() {
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}
	s.span.End()
}

// Trace runs fn inside a span named operationName on t and records its
// outcome.
func Trace(ctx context.Context, t trace.Tracer, operationName string, fn func(ctx context.Context, span *Span) error) error {
	ctx, span := StartSpan(ctx, t, operationName)
	defer span.End()

	err := fn(ctx, span)
	span.Finish(err)
	return err
}
