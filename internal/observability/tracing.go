package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/logfields"
)

// Span represents a tracing span around one SDK or sink operation.
type Span interface {
	SetAttribute(key string, value any)
	AddEvent(name string)
	RecordError(err error)
	Elapsed() time.Duration
	End()
}

// LocalSpan is a lightweight span that reports through slog.
type LocalSpan struct {
	mu         sync.Mutex
	name       string
	startTime  time.Time
	attributes map[string]any
	events     []string
	err        error
}

// SetAttribute sets an attribute on the span.
func (s *LocalSpan) SetAttribute(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attributes == nil {
		s.attributes = make(map[string]any)
	}
	s.attributes[key] = value
}

// AddEvent adds an event to the span.
func (s *LocalSpan) AddEvent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, name)
}

// RecordError records an error in the span.
func (s *LocalSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	slog.Error("Span error", "span", s.name, logfields.Error(err))
}

// Elapsed is the time since the span started.
func (s *LocalSpan) Elapsed() time.Duration {
	return time.Since(s.startTime)
}

// End ends the span and logs duration.
func (s *LocalSpan) End() {
	slog.Debug("Span ended", "span", s.name, logfields.DurationMS(float64(s.Elapsed().Microseconds())/1000))
}

// TracerProvider manages span creation.
type TracerProvider struct {
	enabled bool
}

// NewTracerProvider creates a new tracer provider.
func NewTracerProvider() *TracerProvider {
	return &TracerProvider{enabled: true}
}

// StartSpan creates a new span for a given operation.
func (tp *TracerProvider) StartSpan(ctx context.Context, spanName string) (context.Context, Span) {
	if !tp.enabled {
		return ctx, &LocalSpan{name: spanName, startTime: time.Now()}
	}

	span := &LocalSpan{
		name:       spanName,
		startTime:  time.Now(),
		attributes: make(map[string]any),
	}

	slog.Debug("Span started", "span", spanName)
	return context.WithValue(ctx, spanContextKey, span), span
}

// StartOperationSpan opens a span for an SDK call and tags ctx with the
// component and operation so errors built from it carry both.
func (tp *TracerProvider) StartOperationSpan(ctx context.Context, component, operation string) (context.Context, Span) {
	ctx = WithComponent(WithOperation(ctx, operation), component)
	ctx, span := tp.StartSpan(ctx, component+"."+operation)
	span.SetAttribute(logfields.KeyComponent, component)
	span.SetAttribute(logfields.KeyOperation, operation)
	return ctx, span
}

// StartSinkSpan opens a span for one record delivery.
func (tp *TracerProvider) StartSinkSpan(ctx context.Context, sink string) (context.Context, Span) {
	ctx, span := tp.StartSpan(ctx, "sink."+sink)
	span.SetAttribute(logfields.KeySink, sink)
	return ctx, span
}

// RecordError records an error in a span.
func RecordError(span Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
	}
}

// EndSpan ends a span and records err, if any.
func EndSpan(span Span, err error) {
	if span != nil {
		if err != nil {
			RecordError(span, err)
		}
		span.End()
	}
}

var (
	globalTracerMu       sync.Mutex
	globalTracerProvider *TracerProvider
)

// GetGlobalTracer returns the process-wide tracer provider, creating it on first use.
func GetGlobalTracer() *TracerProvider {
	globalTracerMu.Lock()
	defer globalTracerMu.Unlock()
	if globalTracerProvider == nil {
		globalTracerProvider = NewTracerProvider()
	}
	return globalTracerProvider
}

// SetGlobalTracer sets the global tracer provider (for testing).
func SetGlobalTracer(tp *TracerProvider) {
	globalTracerMu.Lock()
	defer globalTracerMu.Unlock()
	globalTracerProvider = tp
}

type contextKey string

const spanContextKey contextKey = "span"

// SpanFromContext extracts span from context.
func SpanFromContext(ctx context.Context) (Span, bool) {
	span, ok := ctx.Value(spanContextKey).(Span)
	return span, ok
}
