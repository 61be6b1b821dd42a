package errors

import (
	"context"
	"iter"
	"maps"
	"runtime"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/svcerr/internal/foundation"
	"git.home.luguber.info/inful/svcerr/internal/observability"
)

// ErrorContext carries diagnostic metadata orthogonal to the failure kind.
// It is mutable until frozen; Build freezes the copy it embeds in an Error, and
// setters on a frozen context are ignored.
type ErrorContext struct {
	requestID   string
	operation   string
	component   string
	userMessage string
	fields      map[string]string
	backtrace   Backtrace
	frozen      bool
}

// NewErrorContext returns an empty, writable context.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{fields: make(map[string]string)}
}

// SetRequestID sets the correlation id. Last write wins.
func (c *ErrorContext) SetRequestID(id string) *ErrorContext {
	if !c.frozen {
		c.requestID = id
	}
	return c
}

// SetOperation sets the SDK operation name. Last write wins.
func (c *ErrorContext) SetOperation(op string) *ErrorContext {
	if !c.frozen {
		c.operation = op
	}
	return c
}

// SetComponent sets the component or service client name. Last write wins.
func (c *ErrorContext) SetComponent(component string) *ErrorContext {
	if !c.frozen {
		c.component = component
	}
	return c
}

// SetUserMessage overrides the localized per-kind user message.
func (c *ErrorContext) SetUserMessage(msg string) *ErrorContext {
	if !c.frozen {
		c.userMessage = msg
	}
	return c
}

// Add stores key=value in the free-form map. Last write wins per key.
func (c *ErrorContext) Add(key, value string) *ErrorContext {
	if c.frozen {
		return c
	}
	if c.fields == nil {
		c.fields = make(map[string]string)
	}
	c.fields[key] = value
	return c
}

// Merge adds every entry of other, overwriting existing keys.
func (c *ErrorContext) Merge(other map[string]string) *ErrorContext {
	for k, v := range other {
		c.Add(k, v)
	}
	return c
}

// SeedFrom copies request id, operation, and component carried on ctx via the
// observability package into fields that are still unset.
func (c *ErrorContext) SeedFrom(ctx context.Context) *ErrorContext {
	if ctx == nil || c.frozen {
		return c
	}
	lc := observability.GetContext(ctx)
	if c.requestID == "" {
		c.requestID = lc.RequestID
	}
	if c.operation == "" {
		c.operation = lc.Operation
	}
	if c.component == "" {
		c.component = lc.Component
	}
	return c
}

func (c *ErrorContext) RequestID() foundation.Option[string] { return foundation.NonZero(c.requestID) }
func (c *ErrorContext) Operation() foundation.Option[string] { return foundation.NonZero(c.operation) }
func (c *ErrorContext) Component() foundation.Option[string] { return foundation.NonZero(c.component) }

// UserMessage returns the explicit user-facing message, if one was set.
func (c *ErrorContext) UserMessage() foundation.Option[string] {
	return foundation.NonZero(c.userMessage)
}

// Get returns a free-form entry.
func (c *ErrorContext) Get(key string) (string, bool) {
	v, ok := c.fields[key]
	return v, ok
}

// Fields iterates the free-form entries without copying. The map itself is
// never handed out, so a frozen context cannot be changed through it.
func (c *ErrorContext) Fields() iter.Seq2[string, string] {
	return maps.All(c.fields)
}

// FieldsCopy returns an independent copy of the free-form map.
func (c *ErrorContext) FieldsCopy() map[string]string {
	out := make(map[string]string, len(c.fields))
	maps.Copy(out, c.fields)
	return out
}

// Len returns the number of free-form entries.
func (c *ErrorContext) Len() int { return len(c.fields) }

// Backtrace returns the captured stack, if any.
func (c *ErrorContext) Backtrace() foundation.Option[Backtrace] {
	if len(c.backtrace.pcs) == 0 {
		return foundation.None[Backtrace]()
	}
	return foundation.Some(c.backtrace)
}

// Frozen reports whether setters are still effective.
func (c *ErrorContext) Frozen() bool { return c.frozen }

// snapshot returns a frozen deep copy; the map is never shared between the
// builder and built values.
func (c *ErrorContext) snapshot() ErrorContext {
	out := *c
	out.fields = c.FieldsCopy()
	out.frozen = true
	return out
}

// Backtrace is an opaque captured call stack, rendered to text on demand.
type Backtrace struct {
	pcs []uintptr
}

const maxBacktraceDepth = 32

// captureBacktrace records the stack of the caller of the function invoking it.
func captureBacktrace(skip int) Backtrace {
	pcs := make([]uintptr, maxBacktraceDepth)
	// +2 skips runtime.Callers and captureBacktrace itself.
	n := runtime.Callers(skip+2, pcs)
	return Backtrace{pcs: pcs[:n]}
}

// Depth returns the number of captured program counters.
func (b Backtrace) Depth() int { return len(b.pcs) }

// String renders one "function\n\tfile:line" entry per frame.
func (b Backtrace) String() string {
	if len(b.pcs) == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(b.pcs)
	for {
		fr, more := frames.Next()
		sb.WriteString(fr.Function)
		sb.WriteString("\n\t")
		sb.WriteString(fr.File)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(fr.Line))
		if !more {
			break
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
