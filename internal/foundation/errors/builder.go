package errors

import (
	"context"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/foundation"
	"git.home.luguber.info/inful/svcerr/internal/retry"
)

// DefaultMessage is used for every message-carrying kind built without one.
const DefaultMessage = "unknown error"

// DefaultRateLimitWindow applies when a RateLimit error is built without a window.
const DefaultRateLimitWindow = time.Second

// Builder is the only sanctioned way to construct an Error. All setters are
// optional; setters that do not apply to the chosen kind are ignored.
type Builder struct {
	kind       Kind
	message    string
	code       foundation.Option[Code]
	status     foundation.Option[int]
	endpoint   string
	field      string
	source     error
	policy     foundation.Option[retry.Policy]
	duration   foundation.Option[time.Duration]
	limit      int
	window     foundation.Option[time.Duration]
	resetAfter foundation.Option[time.Duration]
	service    string
	retryAfter foundation.Option[time.Duration]
	seed       context.Context
	ctx        ErrorContext
}

// New starts a builder for kind. An unknown kind builds an Internal error.
func New(kind Kind) *Builder {
	return &Builder{kind: kind, ctx: ErrorContext{fields: make(map[string]string)}}
}

// Message sets the diagnostic message.
func (b *Builder) Message(msg string) *Builder {
	b.message = msg
	return b
}

// Code overrides the kind's default code. Ignored for Network and Timeout, whose codes are fixed.
func (b *Builder) Code(code Code) *Builder {
	b.code = foundation.Some(code)
	return b
}

// Status sets the HTTP status of an API error.
func (b *Builder) Status(status int) *Builder {
	b.status = foundation.Some(status)
	return b
}

func (b *Builder) Endpoint(endpoint string) *Builder {
	b.endpoint = endpoint
	return b
}

// Field names the offending input of a Validation error.
func (b *Builder) Field(field string) *Builder {
	b.field = field
	return b
}

// Source attaches the lower-level cause. Only Network, API, Serialization and
// Internal errors keep it.
func (b *Builder) Source(err error) *Builder {
	b.source = err
	return b
}

// RetryPolicy sets the policy a Network error delegates to. Zero or invalid
// fields fall back to the defaults, as with retry.NewPolicy.
func (b *Builder) RetryPolicy(p retry.Policy) *Builder {
	b.policy = foundation.Some(retry.NewPolicy(p.Mode, p.Initial, p.Max, p.MaxRetries))
	return b
}

func (b *Builder) RequestID(id string) *Builder {
	b.ctx.SetRequestID(id)
	return b
}

// Operation sets the context operation; Timeout errors also use it as their operation name.
func (b *Builder) Operation(op string) *Builder {
	b.ctx.SetOperation(op)
	return b
}

func (b *Builder) Component(component string) *Builder {
	b.ctx.SetComponent(component)
	return b
}

func (b *Builder) UserMessage(msg string) *Builder {
	b.ctx.SetUserMessage(msg)
	return b
}

// With adds a free-form context entry. Last write wins per key.
func (b *Builder) With(key, value string) *Builder {
	b.ctx.Add(key, value)
	return b
}

// WithFields adds several free-form context entries.
func (b *Builder) WithFields(fields map[string]string) *Builder {
	b.ctx.Merge(fields)
	return b
}

// WithContext seeds request id, operation and component from values carried
// on ctx. Explicit setters always win, whatever the call order.
func (b *Builder) WithContext(ctx context.Context) *Builder {
	b.seed = ctx
	return b
}

// Backtrace captures the caller's stack into the error context.
func (b *Builder) Backtrace() *Builder {
	b.ctx.backtrace = captureBacktrace(1)
	return b
}

// Duration sets how long a Timeout waited. Non-positive values mean unspecified.
func (b *Builder) Duration(d time.Duration) *Builder {
	b.duration = positive(d)
	return b
}

// Limit sets the request quota of a RateLimit error.
func (b *Builder) Limit(limit int) *Builder {
	b.limit = limit
	return b
}

// Window sets the quota window of a RateLimit error. Non-positive values mean unspecified.
func (b *Builder) Window(d time.Duration) *Builder {
	b.window = positive(d)
	return b
}

func (b *Builder) ResetAfter(d time.Duration) *Builder {
	b.resetAfter = positive(d)
	return b
}

// Service names the unavailable dependency.
func (b *Builder) Service(name string) *Builder {
	b.service = name
	return b
}

// RetryAfter is the server hint of a ServiceUnavailable error.
func (b *Builder) RetryAfter(d time.Duration) *Builder {
	b.retryAfter = positive(d)
	return b
}

// Build resolves defaults and returns the error. It never fails.
func (b *Builder) Build() Error {
	ctx := b.ctx.snapshot()
	if b.seed != nil {
		ctx.frozen = false
		ctx.SeedFrom(b.seed)
		ctx.frozen = true
	}
	build, ok := buildTable[b.kind]
	if !ok {
		build = buildInternal
	}
	return build(b, base{ctx: ctx})
}

// BuildStrict is Build plus rejection of values that would produce a
// misleading record: a Timeout without a duration, an API error with an
// invalid HTTP status, or a Validation error without a field.
func (b *Builder) BuildStrict() (Error, error) {
	switch b.kind {
	case KindTimeout:
		if b.duration.IsNone() {
			return nil, strictViolation("duration", "timeout duration must be positive")
		}
	case KindAPI:
		if s, ok := b.status.Get(); ok && (s < 100 || s > 599) {
			return nil, strictViolation("status", "api status must be a valid HTTP status")
		}
	case KindValidation:
		if b.field == "" {
			return nil, strictViolation("field", "validation error requires a field name")
		}
	}
	return b.Build(), nil
}

func strictViolation(field, msg string) Error {
	return New(KindValidation).Field(field).Message(msg).Component("errors.builder").Build()
}

func positive(d time.Duration) foundation.Option[time.Duration] {
	if d <= 0 {
		return foundation.None[time.Duration]()
	}
	return foundation.Some(d)
}

func (b *Builder) msg() string {
	if b.message == "" {
		return DefaultMessage
	}
	return b.message
}

func (b *Builder) codeOr(def Code) Code {
	return b.code.UnwrapOr(def)
}

// buildTable is the single mapping from kind to default resolution.
var buildTable = map[Kind]func(*Builder, base) Error{
	KindNetwork:            buildNetwork,
	KindAuthentication:     buildAuthentication,
	KindAPI:                buildAPI,
	KindValidation:         buildValidation,
	KindConfiguration:      buildConfiguration,
	KindSerialization:      buildSerialization,
	KindBusiness:           buildBusiness,
	KindTimeout:            buildTimeout,
	KindRateLimit:          buildRateLimit,
	KindServiceUnavailable: buildServiceUnavailable,
	KindInternal:           buildInternal,
}

func buildNetwork(b *Builder, bs base) Error {
	return &NetworkError{
		base:    bs,
		cause:   newCause(b.source),
		message: b.msg(),
		policy:  b.policy.UnwrapOr(retry.DefaultPolicy()),
	}
}

func buildAuthentication(b *Builder, bs base) Error {
	return &AuthenticationError{base: bs, message: b.msg(), code: b.codeOr(CodeUnauthenticated)}
}

func buildAPI(b *Builder, bs base) Error {
	status := b.status.UnwrapOr(500)
	return &APIError{
		base:     bs,
		cause:    newCause(b.source),
		status:   status,
		endpoint: b.endpoint,
		message:  b.msg(),
		code:     b.codeOr(CodeForStatus(status)),
	}
}

func buildValidation(b *Builder, bs base) Error {
	return &ValidationError{base: bs, field: b.field, message: b.msg(), code: b.codeOr(CodeInvalidInput)}
}

func buildConfiguration(b *Builder, bs base) Error {
	return &ConfigurationError{base: bs, message: b.msg(), code: b.codeOr(CodeInvalidConfig)}
}

func buildSerialization(b *Builder, bs base) Error {
	return &SerializationError{
		base:    bs,
		cause:   newCause(b.source),
		message: b.msg(),
		code:    b.codeOr(CodeDecodeFailed),
	}
}

func buildBusiness(b *Builder, bs base) Error {
	return &BusinessError{base: bs, code: b.codeOr(CodeBusinessRule), message: b.msg()}
}

func buildTimeout(b *Builder, bs base) Error {
	return &TimeoutError{base: bs, duration: b.duration, operation: bs.ctx.Operation()}
}

func buildRateLimit(b *Builder, bs base) Error {
	return &RateLimitError{
		base:       bs,
		limit:      max(b.limit, 0),
		window:     b.window.UnwrapOr(DefaultRateLimitWindow),
		resetAfter: b.resetAfter,
		code:       b.codeOr(CodeRateLimited),
	}
}

func buildServiceUnavailable(b *Builder, bs base) Error {
	return &ServiceUnavailableError{
		base:       bs,
		service:    b.service,
		retryAfter: b.retryAfter,
		code:       b.codeOr(CodeServiceUnavailable),
	}
}

func buildInternal(b *Builder, bs base) Error {
	return &InternalError{
		base:    bs,
		cause:   newCause(b.source),
		code:    b.codeOr(CodeInternal),
		message: b.msg(),
	}
}
