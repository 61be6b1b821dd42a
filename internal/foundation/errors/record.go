package errors

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/foundation"
	"git.home.luguber.info/inful/svcerr/internal/logfields"
)

// Record is a flattened, always-serializable snapshot of an Error, decoupled
// from the live value. Absent optional fields are nil and omitted from JSON.
type Record struct {
	Kind         string            `json:"kind"`
	Code         Code              `json:"code"`
	Severity     Severity          `json:"severity"`
	Retryable    bool              `json:"retryable"`
	RetryDelayMS *int64            `json:"retry_delay_ms,omitempty"`
	Message      string            `json:"message"`
	UserMessage  string            `json:"user_message"`
	Context      map[string]string `json:"context,omitempty"`
	RequestID    *string           `json:"request_id,omitempty"`
	Operation    *string           `json:"operation,omitempty"`
	Component    *string           `json:"component,omitempty"`
	Backtrace    *string           `json:"backtrace,omitempty"`
	Source       *string           `json:"source,omitempty"`
	// Timestamp is stamped by sinks; ToRecord leaves it zero to stay pure.
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// ToRecord converts e into a Record. It never panics; a nil e yields an
// internal record describing the missing error.
func ToRecord(e Error) Record {
	if e == nil {
		return Record{
			Kind:        KindUnknown.String(),
			Code:        CodeInternal,
			Severity:    CodeInternal.Severity(),
			Message:     "nil error recorded",
			UserMessage: DefaultUserMessage(KindInternal),
			Context:     map[string]string{},
		}
	}
	ctx := e.Context()
	rec := Record{
		Kind:         e.Kind().String(),
		Code:         e.Code(),
		Severity:     e.Severity(),
		Retryable:    e.Retryable(),
		RetryDelayMS: foundation.MapOption(e.RetryDelay(0), time.Duration.Milliseconds).ToPointer(),
		Message:      e.Message(),
		UserMessage:  e.UserMessage(),
		Context:      ctx.FieldsCopy(),
		RequestID:    ctx.RequestID().ToPointer(),
		Operation:    ctx.Operation().ToPointer(),
		Component:    ctx.Component().ToPointer(),
		Backtrace:    foundation.MapOption(ctx.Backtrace(), Backtrace.String).ToPointer(),
	}
	if s, ok := e.(interface{ SourceText() string }); ok {
		rec.Source = foundation.NonZero(s.SourceText()).ToPointer()
	}
	return rec
}

// Attrs renders the record as slog attributes using the canonical field names.
func (r Record) Attrs() []slog.Attr {
	attrs := []slog.Attr{
		logfields.Kind(r.Kind),
		logfields.ErrorCode(string(r.Code)),
		logfields.Severity(r.Severity.String()),
		logfields.Retryable(r.Retryable),
	}
	if r.RetryDelayMS != nil {
		attrs = append(attrs, logfields.RetryDelayMS(*r.RetryDelayMS))
	}
	if r.RequestID != nil {
		attrs = append(attrs, logfields.RequestID(*r.RequestID))
	}
	if r.Operation != nil {
		attrs = append(attrs, logfields.Operation(*r.Operation))
	}
	if r.Component != nil {
		attrs = append(attrs, logfields.Component(*r.Component))
	}
	if r.Source != nil {
		attrs = append(attrs, logfields.Source(*r.Source))
	}
	if len(r.Context) > 0 {
		group := make([]any, 0, len(r.Context))
		for k, v := range r.Context {
			group = append(group, slog.String(k, v))
		}
		attrs = append(attrs, slog.Group(logfields.KeyContext, group...))
	}
	return attrs
}

// LogValue lets a Record be passed directly as a slog value.
func (r Record) LogValue() slog.Value {
	return slog.GroupValue(r.Attrs()...)
}
