package errors

import (
	"fmt"
	"net/http"

	"git.home.luguber.info/inful/svcerr/internal/foundation/normalization"
)

// Code is a stable, closed classification of a failure, independent of its Kind.
// Several kinds may share a code; every code has exactly one severity.
type Code string

const (
	CodeConnectionFailed   Code = "connection_failed"
	CodeUnauthenticated    Code = "unauthenticated"
	CodeForbidden          Code = "forbidden"
	CodeBadRequest         Code = "bad_request"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeRateLimited        Code = "rate_limited"
	CodeUpstreamError      Code = "upstream_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvalidConfig      Code = "invalid_config"
	CodeDecodeFailed       Code = "decode_failed"
	CodeBusinessRule       Code = "business_rule"
	CodeTimeout            Code = "timeout"
	CodeServiceUnavailable Code = "service_unavailable"
	CodeInternal           Code = "internal"
)

// Severity is an ordinal impact level driving alerting thresholds.
type Severity uint8

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// codeTable is the single source of truth for severity. It is never written
// after package initialization.
var codeTable = map[Code]Severity{
	CodeConnectionFailed:   SeverityHigh,
	CodeUnauthenticated:    SeverityHigh,
	CodeForbidden:          SeverityHigh,
	CodeBadRequest:         SeverityMedium,
	CodeNotFound:           SeverityLow,
	CodeConflict:           SeverityMedium,
	CodeRateLimited:        SeverityMedium,
	CodeUpstreamError:      SeverityHigh,
	CodeInvalidInput:       SeverityLow,
	CodeInvalidConfig:      SeverityCritical,
	CodeDecodeFailed:       SeverityHigh,
	CodeBusinessRule:       SeverityMedium,
	CodeTimeout:            SeverityMedium,
	CodeServiceUnavailable: SeverityHigh,
	CodeInternal:           SeverityCritical,
}

// orderedCodes fixes listing order for CLIs and docs.
var orderedCodes = []Code{
	CodeConnectionFailed,
	CodeUnauthenticated,
	CodeForbidden,
	CodeBadRequest,
	CodeNotFound,
	CodeConflict,
	CodeRateLimited,
	CodeUpstreamError,
	CodeInvalidInput,
	CodeInvalidConfig,
	CodeDecodeFailed,
	CodeBusinessRule,
	CodeTimeout,
	CodeServiceUnavailable,
	CodeInternal,
}

var codeNormalizer = normalization.NewEnumNormalizer("error code", func() map[string]Code {
	m := make(map[string]Code, len(orderedCodes))
	for _, c := range orderedCodes {
		m[string(c)] = c
	}
	return m
}(), CodeInternal)

// Codes returns all known codes in a stable order.
func Codes() []Code {
	out := make([]Code, len(orderedCodes))
	copy(out, orderedCodes)
	return out
}

// ParseCode converts user input into a known Code.
func ParseCode(raw string) (Code, error) {
	return codeNormalizer.NormalizeWithValidation(raw)
}

// Severity looks the code up in the static table. Unknown codes are Critical
// so they are never silently under-alerted.
func (c Code) Severity() Severity {
	if s, ok := codeTable[c]; ok {
		return s
	}
	return SeverityCritical
}

// Known reports whether c is part of the closed code set.
func (c Code) Known() bool {
	_, ok := codeTable[c]
	return ok
}

func (c Code) String() string { return string(c) }

// CodeForStatus derives a code from an HTTP status.
func CodeForStatus(status int) Code {
	switch {
	case status == http.StatusBadRequest:
		return CodeBadRequest
	case status == http.StatusUnauthorized:
		return CodeUnauthenticated
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status == http.StatusUnprocessableEntity:
		return CodeInvalidInput
	case status == http.StatusTooManyRequests:
		return CodeRateLimited
	case status == http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	case status == http.StatusGatewayTimeout:
		return CodeTimeout
	case status >= 500 && status <= 599:
		return CodeUpstreamError
	case status >= 400 && status <= 499:
		return CodeBadRequest
	default:
		return CodeInternal
	}
}

var severityNames = map[Severity]string{
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

var severityNormalizer = normalization.NewEnumNormalizer("severity", map[string]Severity{
	"low":      SeverityLow,
	"medium":   SeverityMedium,
	"high":     SeverityHigh,
	"critical": SeverityCritical,
}, 0)

// ParseSeverity converts user input into a Severity.
func ParseSeverity(raw string) (Severity, error) {
	return severityNormalizer.NormalizeWithValidation(raw)
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", uint8(s))
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s >= other
}

// MarshalText renders the severity name so records serialize as strings.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
