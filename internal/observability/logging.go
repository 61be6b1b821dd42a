package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/svcerr/internal/logfields"
)

// LogContext holds the correlation values an SDK call carries on its context.
type LogContext struct {
	RequestID string
	Operation string
	Component string
	TraceID   string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	lc := extractLogContext(ctx)
	lc.RequestID = requestID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithOperation adds the SDK operation name to the context.
func WithOperation(ctx context.Context, operation string) context.Context {
	lc := extractLogContext(ctx)
	lc.Operation = operation
	return context.WithValue(ctx, logContextKey, lc)
}

// WithComponent adds the component or service client name to the context.
func WithComponent(ctx context.Context, component string) context.Context {
	lc := extractLogContext(ctx)
	lc.Component = component
	return context.WithValue(ctx, logContextKey, lc)
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	lc := extractLogContext(ctx)
	lc.TraceID = traceID
	return context.WithValue(ctx, logContextKey, lc)
}

// EnsureRequestID returns ctx unchanged when it already carries a request ID,
// otherwise a child context with a fresh one.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if lc := extractLogContext(ctx); lc.RequestID != "" {
		return ctx, lc.RequestID
	}
	id := NewRequestID()
	return WithRequestID(ctx, id), id
}

// NewRequestID generates a random correlation id.
func NewRequestID() string {
	return uuid.NewString()
}

func extractLogContext(ctx context.Context) LogContext {
	if ctx == nil {
		return LogContext{}
	}
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// getLogAttrs returns slog attributes from the context's LogContext.
func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}

	if lc.RequestID != "" {
		attrs = append(attrs, logfields.RequestID(lc.RequestID))
	}
	if lc.Operation != "" {
		attrs = append(attrs, logfields.Operation(lc.Operation))
	}
	if lc.Component != "" {
		attrs = append(attrs, logfields.Component(lc.Component))
	}
	if lc.TraceID != "" {
		attrs = append(attrs, slog.String("trace.id", lc.TraceID))
	}

	return attrs
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelInfo, msg, append(getLogAttrs(ctx), attrs...)...)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelWarn, msg, append(getLogAttrs(ctx), attrs...)...)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelError, msg, append(getLogAttrs(ctx), attrs...)...)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelDebug, msg, append(getLogAttrs(ctx), attrs...)...)
}

// LogBuilder is a helper for building log messages with context.
type LogBuilder struct {
	ctx    context.Context
	logger *slog.Logger
	attrs  []slog.Attr
}

// NewLogBuilder creates a new log builder with context.
func NewLogBuilder(ctx context.Context) *LogBuilder {
	return &LogBuilder{
		ctx:    ctx,
		logger: slog.Default(),
		attrs:  getLogAttrs(ctx),
	}
}

// Logger switches the destination logger.
func (lb *LogBuilder) Logger(l *slog.Logger) *LogBuilder {
	if l != nil {
		lb.logger = l
	}
	return lb
}

// With adds an attribute to the log builder.
func (lb *LogBuilder) With(key string, value any) *LogBuilder {
	switch v := value.(type) {
	case string:
		lb.attrs = append(lb.attrs, slog.String(key, v))
	case int:
		lb.attrs = append(lb.attrs, slog.Int(key, v))
	case int64:
		lb.attrs = append(lb.attrs, slog.Int64(key, v))
	case float64:
		lb.attrs = append(lb.attrs, slog.Float64(key, v))
	case bool:
		lb.attrs = append(lb.attrs, slog.Bool(key, v))
	default:
		lb.attrs = append(lb.attrs, slog.Any(key, v))
	}
	return lb
}

// Attrs appends prebuilt attributes.
func (lb *LogBuilder) Attrs(attrs ...slog.Attr) *LogBuilder {
	lb.attrs = append(lb.attrs, attrs...)
	return lb
}

// Log emits the message at level.
func (lb *LogBuilder) Log(level slog.Level, msg string) {
	lb.logger.LogAttrs(lb.ctx, level, msg, lb.attrs...)
}

// Info logs an info message with accumulated attributes.
func (lb *LogBuilder) Info(msg string) { lb.Log(slog.LevelInfo, msg) }

// Warn logs a warning message with accumulated attributes.
func (lb *LogBuilder) Warn(msg string) { lb.Log(slog.LevelWarn, msg) }

// Error logs an error message with accumulated attributes.
func (lb *LogBuilder) Error(msg string) { lb.Log(slog.LevelError, msg) }

// Debug logs a debug message with accumulated attributes.
func (lb *LogBuilder) Debug(msg string) { lb.Log(slog.LevelDebug, msg) }

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}

// HasContextValue checks if a specific context value is set.
func HasContextValue(ctx context.Context, field string) bool {
	lc := extractLogContext(ctx)
	switch field {
	case logfields.KeyRequestID:
		return lc.RequestID != ""
	case logfields.KeyOperation:
		return lc.Operation != ""
	case logfields.KeyComponent:
		return lc.Component != ""
	case "trace.id":
		return lc.TraceID != ""
	default:
		return false
	}
}
