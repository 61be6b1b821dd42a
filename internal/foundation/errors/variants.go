package errors

import (
	"fmt"
	"net/http"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/foundation"
	"git.home.luguber.info/inful/svcerr/internal/retry"
)

// base holds the one ErrorContext every variant owns.
type base struct {
	ctx ErrorContext
}

func (b *base) Context() *ErrorContext { return &b.ctx }
func (b *base) sealed()                {}

func (b *base) clone() base { return base{ctx: b.ctx.snapshot()} }

// userMessage prefers an explicit context override over the localized default.
func (b *base) userMessage(k Kind) string {
	if msg, ok := b.ctx.UserMessage().Get(); ok {
		return msg
	}
	return DefaultUserMessage(k)
}

// cause is embedded only by kinds that may carry a causal source. The live
// source is owned by the built value; clones keep the text rendering only.
type cause struct {
	source     error
	sourceText string
}

func newCause(err error) cause {
	if err == nil {
		return cause{}
	}
	return cause{source: err, sourceText: err.Error()}
}

// Source returns the live lower-level failure; nil on clones.
func (c *cause) Source() error { return c.source }

// SourceText returns the rendering of the source captured at build time.
func (c *cause) SourceText() string { return c.sourceText }

func (c *cause) Unwrap() error { return c.source }

func (c *cause) detached() cause { return cause{sourceText: c.sourceText} }

func render(k Kind, code Code, msg, sourceText string) string {
	if sourceText != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", k, code, msg, sourceText)
	}
	return fmt.Sprintf("[%s:%s] %s", k, code, msg)
}

func none() foundation.Option[time.Duration] { return foundation.None[time.Duration]() }

// NetworkError is a connection-level failure below the HTTP layer.
type NetworkError struct {
	base
	cause
	message string
	policy  retry.Policy
}

func (e *NetworkError) Kind() Kind                 { return KindNetwork }
func (e *NetworkError) Code() Code                 { return CodeConnectionFailed }
func (e *NetworkError) Severity() Severity         { return e.Code().Severity() }
func (e *NetworkError) Message() string            { return e.message }
func (e *NetworkError) UserMessage() string        { return e.userMessage(KindNetwork) }
func (e *NetworkError) Policy() retry.Policy       { return e.policy }
func (e *NetworkError) Error() string              { return render(e.Kind(), e.Code(), e.message, e.sourceText) }
func (e *NetworkError) Retryable() bool            { return e.policy.Retryable() }
func (e *NetworkError) Record() Record             { return ToRecord(e) }
func (e *NetworkError) RetryDelay(attempt int) foundation.Option[time.Duration] {
	if !e.Retryable() {
		return none()
	}
	return foundation.Some(e.policy.Delay(attempt))
}
func (e *NetworkError) Clone() Error {
	c := *e
	c.base, c.cause = e.base.clone(), e.cause.detached()
	return &c
}

// AuthenticationError means credentials were missing, expired, or rejected.
type AuthenticationError struct {
	base
	message string
	code    Code
}

func (e *AuthenticationError) Kind() Kind          { return KindAuthentication }
func (e *AuthenticationError) Code() Code          { return e.code }
func (e *AuthenticationError) Severity() Severity  { return e.Code().Severity() }
func (e *AuthenticationError) Message() string     { return e.message }
func (e *AuthenticationError) UserMessage() string { return e.userMessage(KindAuthentication) }
func (e *AuthenticationError) Error() string       { return render(e.Kind(), e.code, e.message, "") }
func (e *AuthenticationError) Retryable() bool     { return false }
func (e *AuthenticationError) Record() Record      { return ToRecord(e) }
func (e *AuthenticationError) RetryDelay(int) foundation.Option[time.Duration] {
	return none()
}
func (e *AuthenticationError) Clone() Error {
	c := *e
	c.base = e.base.clone()
	return &c
}

// APIError is a non-success HTTP response from a remote endpoint.
type APIError struct {
	base
	cause
	status   int
	endpoint string
	message  string
	code     Code
}

func (e *APIError) Kind() Kind          { return KindAPI }
func (e *APIError) Code() Code          { return e.code }
func (e *APIError) Severity() Severity  { return e.Code().Severity() }
func (e *APIError) Message() string     { return e.message }
func (e *APIError) UserMessage() string { return e.userMessage(KindAPI) }
func (e *APIError) Status() int         { return e.status }
func (e *APIError) Endpoint() string    { return e.endpoint }
func (e *APIError) Record() Record      { return ToRecord(e) }
func (e *APIError) Error() string {
	msg := e.message
	if e.endpoint != "" {
		msg = fmt.Sprintf("%s %d: %s", e.endpoint, e.status, e.message)
	}
	return render(e.Kind(), e.code, msg, e.sourceText)
}

// Retryable is true for 429 and any 5xx status.
func (e *APIError) Retryable() bool {
	return e.status == http.StatusTooManyRequests || (e.status >= 500 && e.status <= 599)
}

// RetryDelay is min(2^attempt, 2^5) seconds while retryable.
func (e *APIError) RetryDelay(attempt int) foundation.Option[time.Duration] {
	if !e.Retryable() {
		return none()
	}
	return foundation.Some(apiBackoff.Delay(attempt))
}
func (e *APIError) Clone() Error {
	c := *e
	c.base, c.cause = e.base.clone(), e.cause.detached()
	return &c
}

// ValidationError rejects caller input before or after it reached the service.
type ValidationError struct {
	base
	field   string
	message string
	code    Code
}

func (e *ValidationError) Kind() Kind          { return KindValidation }
func (e *ValidationError) Code() Code          { return e.code }
func (e *ValidationError) Severity() Severity  { return e.Code().Severity() }
func (e *ValidationError) Message() string     { return e.message }
func (e *ValidationError) UserMessage() string { return e.userMessage(KindValidation) }
func (e *ValidationError) Field() string       { return e.field }
func (e *ValidationError) Retryable() bool     { return false }
func (e *ValidationError) Record() Record      { return ToRecord(e) }
func (e *ValidationError) Error() string {
	msg := e.message
	if e.field != "" {
		msg = e.field + ": " + e.message
	}
	return render(e.Kind(), e.code, msg, "")
}
func (e *ValidationError) RetryDelay(int) foundation.Option[time.Duration] { return none() }
func (e *ValidationError) Clone() Error {
	c := *e
	c.base = e.base.clone()
	return &c
}

// ConfigurationError signals a client-side setup defect.
type ConfigurationError struct {
	base
	message string
	code    Code
}

func (e *ConfigurationError) Kind() Kind                                      { return KindConfiguration }
func (e *ConfigurationError) Code() Code                                      { return e.code }
func (e *ConfigurationError) Severity() Severity                              { return e.Code().Severity() }
func (e *ConfigurationError) Message() string                                 { return e.message }
func (e *ConfigurationError) UserMessage() string                             { return e.userMessage(KindConfiguration) }
func (e *ConfigurationError) Error() string                                   { return render(e.Kind(), e.code, e.message, "") }
func (e *ConfigurationError) Retryable() bool                                 { return false }
func (e *ConfigurationError) Record() Record                                  { return ToRecord(e) }
func (e *ConfigurationError) RetryDelay(int) foundation.Option[time.Duration] { return none() }
func (e *ConfigurationError) Clone() Error {
	c := *e
	c.base = e.base.clone()
	return &c
}

// SerializationError means a payload could not be encoded or decoded.
type SerializationError struct {
	base
	cause
	message string
	code    Code
}

func (e *SerializationError) Kind() Kind                                      { return KindSerialization }
func (e *SerializationError) Code() Code                                      { return e.code }
func (e *SerializationError) Severity() Severity                              { return e.Code().Severity() }
func (e *SerializationError) Message() string                                 { return e.message }
func (e *SerializationError) UserMessage() string                             { return e.userMessage(KindSerialization) }
func (e *SerializationError) Error() string                                   { return render(e.Kind(), e.code, e.message, e.sourceText) }
func (e *SerializationError) Retryable() bool                                 { return false }
func (e *SerializationError) Record() Record                                  { return ToRecord(e) }
func (e *SerializationError) RetryDelay(int) foundation.Option[time.Duration] { return none() }
func (e *SerializationError) Clone() Error {
	c := *e
	c.base, c.cause = e.base.clone(), e.cause.detached()
	return &c
}

// BusinessError is a domain rule violation reported by a service.
type BusinessError struct {
	base
	code    Code
	message string
}

func (e *BusinessError) Kind() Kind                                      { return KindBusiness }
func (e *BusinessError) Code() Code                                      { return e.code }
func (e *BusinessError) Severity() Severity                              { return e.Code().Severity() }
func (e *BusinessError) Message() string                                 { return e.message }
func (e *BusinessError) UserMessage() string                             { return e.userMessage(KindBusiness) }
func (e *BusinessError) Error() string                                   { return render(e.Kind(), e.code, e.message, "") }
func (e *BusinessError) Retryable() bool                                 { return false }
func (e *BusinessError) Record() Record                                  { return ToRecord(e) }
func (e *BusinessError) RetryDelay(int) foundation.Option[time.Duration] { return none() }
func (e *BusinessError) Clone() Error {
	c := *e
	c.base = e.base.clone()
	return &c
}

// TimeoutError records that an operation exceeded its deadline or was canceled.
type TimeoutError struct {
	base
	duration  foundation.Option[time.Duration]
	operation foundation.Option[string]
}

func (e *TimeoutError) Kind() Kind          { return KindTimeout }
func (e *TimeoutError) Code() Code          { return CodeTimeout }
func (e *TimeoutError) Severity() Severity  { return e.Code().Severity() }
func (e *TimeoutError) UserMessage() string { return e.userMessage(KindTimeout) }
func (e *TimeoutError) Error() string       { return render(e.Kind(), e.Code(), e.Message(), "") }
func (e *TimeoutError) Retryable() bool     { return true }
func (e *TimeoutError) Record() Record      { return ToRecord(e) }

// Duration is None when the deadline was not known at the failure site.
func (e *TimeoutError) Duration() foundation.Option[time.Duration] { return e.duration }

// Operation names the timed-out operation, if known.
func (e *TimeoutError) Operation() foundation.Option[string] { return e.operation }

func (e *TimeoutError) Message() string {
	op, hasOp := e.operation.Get()
	d, hasDur := e.duration.Get()
	switch {
	case hasOp && hasDur:
		return fmt.Sprintf("operation %s timed out after %s", op, d)
	case hasOp:
		return fmt.Sprintf("operation %s timed out", op)
	case hasDur:
		return fmt.Sprintf("operation timed out after %s", d)
	default:
		return "operation timed out"
	}
}

// RetryDelay is None: timeouts are retryable but the caller owns the backoff.
func (e *TimeoutError) RetryDelay(int) foundation.Option[time.Duration] { return none() }
func (e *TimeoutError) Clone() Error {
	c := *e
	c.base = e.base.clone()
	return &c
}

// RateLimitError means the caller exceeded a request quota.
type RateLimitError struct {
	base
	limit      int
	window     time.Duration
	resetAfter foundation.Option[time.Duration]
	code       Code
}

func (e *RateLimitError) Kind() Kind                                  { return KindRateLimit }
func (e *RateLimitError) Code() Code                                  { return e.code }
func (e *RateLimitError) Severity() Severity                          { return e.Code().Severity() }
func (e *RateLimitError) UserMessage() string                         { return e.userMessage(KindRateLimit) }
func (e *RateLimitError) Error() string                               { return render(e.Kind(), e.code, e.Message(), "") }
func (e *RateLimitError) Limit() int                                  { return e.limit }
func (e *RateLimitError) Window() time.Duration                       { return e.window }
func (e *RateLimitError) ResetAfter() foundation.Option[time.Duration] { return e.resetAfter }
func (e *RateLimitError) Retryable() bool                             { return true }
func (e *RateLimitError) Record() Record                              { return ToRecord(e) }

func (e *RateLimitError) Message() string {
	if e.limit > 0 {
		return fmt.Sprintf("rate limit of %d requests per %s exceeded", e.limit, e.window)
	}
	return fmt.Sprintf("rate limit exceeded (window %s)", e.window)
}

// RetryDelay is the window regardless of attempt.
func (e *RateLimitError) RetryDelay(int) foundation.Option[time.Duration] {
	return foundation.Some(e.window)
}
func (e *RateLimitError) Clone() Error {
	c := *e
	c.base = e.base.clone()
	return &c
}

// ServiceUnavailableError means a dependency is down or in maintenance.
type ServiceUnavailableError struct {
	base
	service    string
	retryAfter foundation.Option[time.Duration]
	code       Code
}

func (e *ServiceUnavailableError) Kind() Kind          { return KindServiceUnavailable }
func (e *ServiceUnavailableError) Code() Code          { return e.code }
func (e *ServiceUnavailableError) Severity() Severity  { return e.Code().Severity() }
func (e *ServiceUnavailableError) UserMessage() string { return e.userMessage(KindServiceUnavailable) }
func (e *ServiceUnavailableError) Error() string       { return render(e.Kind(), e.code, e.Message(), "") }
func (e *ServiceUnavailableError) Service() string     { return e.service }
func (e *ServiceUnavailableError) Retryable() bool     { return true }
func (e *ServiceUnavailableError) Record() Record      { return ToRecord(e) }

// RetryAfter is the server-provided hint, if any.
func (e *ServiceUnavailableError) RetryAfter() foundation.Option[time.Duration] {
	return e.retryAfter
}

func (e *ServiceUnavailableError) Message() string {
	if e.service == "" {
		return "service unavailable"
	}
	return fmt.Sprintf("service %s unavailable", e.service)
}

// RetryDelay is retry_after when known; otherwise the caller supplies a fallback.
func (e *ServiceUnavailableError) RetryDelay(int) foundation.Option[time.Duration] {
	return e.retryAfter
}
func (e *ServiceUnavailableError) Clone() Error {
	c := *e
	c.base = e.base.clone()
	return &c
}

// InternalError is a defect inside the SDK itself.
type InternalError struct {
	base
	cause
	code    Code
	message string
}

func (e *InternalError) Kind() Kind                                      { return KindInternal }
func (e *InternalError) Code() Code                                      { return e.code }
func (e *InternalError) Severity() Severity                              { return e.Code().Severity() }
func (e *InternalError) Message() string                                 { return e.message }
func (e *InternalError) UserMessage() string                             { return e.userMessage(KindInternal) }
func (e *InternalError) Error() string                                   { return render(e.Kind(), e.code, e.message, e.sourceText) }
func (e *InternalError) Retryable() bool                                 { return false }
func (e *InternalError) Record() Record                                  { return ToRecord(e) }
func (e *InternalError) RetryDelay(int) foundation.Option[time.Duration] { return none() }
func (e *InternalError) Clone() Error {
	c := *e
	c.base, c.cause = e.base.clone(), e.cause.detached()
	return &c
}
