package errors

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/svcerr/internal/foundation"
)

// maxBodyMessage bounds how much of an error body becomes the message.
const maxBodyMessage = 512

// FromHTTPStatus converts a non-success response into an API error. The body,
// if any, becomes the diagnostic message.
func FromHTTPStatus(status int, endpoint string, body []byte) Error {
	return New(KindAPI).
		Status(status).
		Endpoint(endpoint).
		Message(bodyMessage(status, body)).
		Build()
}

// FromHTTPResponse converts an already-received response using only its
// status line and headers. 429 with rate-limit headers becomes a RateLimit
// error; 503 becomes ServiceUnavailable with Retry-After. The body is not read.
func FromHTTPResponse(resp *http.Response) Error {
	return fromHTTPResponse(resp, time.Now())
}

func fromHTTPResponse(resp *http.Response, now time.Time) Error {
	if resp == nil {
		return New(KindInternal).Message("nil http response").Build()
	}
	endpoint, host := "", ""
	if resp.Request != nil && resp.Request.URL != nil {
		endpoint = resp.Request.Method + " " + resp.Request.URL.Path
		host = resp.Request.URL.Host
	}
	requestID := resp.Header.Get("X-Request-Id")
	retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"), now)

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		window, hasWindow := retryAfter.Get()
		if !hasWindow {
			break
		}
		b := New(KindRateLimit).Window(window).RequestID(requestID).With("endpoint", endpoint)
		if limit, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit")); err == nil {
			b.Limit(limit)
		}
		if reset, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Reset")); err == nil {
			b.ResetAfter(time.Duration(reset) * time.Second)
		}
		return b.Build()
	case http.StatusServiceUnavailable:
		b := New(KindServiceUnavailable).Service(host).RequestID(requestID).With("endpoint", endpoint)
		if d, ok := retryAfter.Get(); ok {
			b.RetryAfter(d)
		}
		return b.Build()
	}
	return New(KindAPI).
		Status(resp.StatusCode).
		Endpoint(endpoint).
		Message(bodyMessage(resp.StatusCode, nil)).
		RequestID(requestID).
		Build()
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(raw string, now time.Time) foundation.Option[time.Duration] {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return none()
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return none()
		}
		return foundation.Some(time.Duration(secs) * time.Second)
	}
	if at, err := http.ParseTime(raw); err == nil && at.After(now) {
		return foundation.Some(at.Sub(now))
	}
	return none()
}

func bodyMessage(status int, body []byte) string {
	msg := strings.ToValidUTF8(strings.TrimSpace(string(body)), "\uFFFD")
	if msg == "" {
		if text := http.StatusText(status); text != "" {
			return strings.ToLower(text)
		}
		return DefaultMessage
	}
	if len(msg) > maxBodyMessage {
		cut := maxBodyMessage
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "…"
	}
	return msg
}

// FromTransport converts a failure raised before any response was received.
// Deadlines and net timeouts become Timeout errors, cancellation becomes a
// Timeout marked canceled=true, everything else is a Network error.
// Taxonomy values pass through unchanged; nil stays nil.
func FromTransport(err error, operation string) Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	var netErr net.Error
	switch {
	case stdErrors.Is(err, context.DeadlineExceeded):
		return New(KindTimeout).Operation(operation).Build()
	case stdErrors.Is(err, context.Canceled):
		return New(KindTimeout).Operation(operation).With("canceled", "true").Build()
	case stdErrors.As(err, &netErr) && netErr.Timeout():
		return New(KindTimeout).Operation(operation).With("transport", "net").Build()
	}
	b := New(KindNetwork).Message("connection failed").Operation(operation).Source(err)
	var opErr *net.OpError
	if stdErrors.As(err, &opErr) {
		b.With("net_op", opErr.Op)
		if opErr.Addr != nil {
			b.With("remote_addr", opErr.Addr.String())
		}
	}
	var dnsErr *net.DNSError
	if stdErrors.As(err, &dnsErr) {
		b.With("host", dnsErr.Name)
	}
	return b.Build()
}

// FromDecode converts a payload decoding failure. format names the wire
// format ("json", "yaml", ...).
func FromDecode(err error, format string) Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	b := New(KindSerialization).Message("failed to decode " + format + " payload").Source(err).With("format", format)

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var yamlErr *yaml.TypeError
	switch {
	case stdErrors.As(err, &syntaxErr):
		b.With("offset", strconv.FormatInt(syntaxErr.Offset, 10))
	case stdErrors.As(err, &typeErr):
		b.With("field", typeErr.Field).With("expected_type", typeErr.Type.String())
	case stdErrors.As(err, &yamlErr):
		b.With("problems", strconv.Itoa(len(yamlErr.Errors)))
	}
	return b.Build()
}
