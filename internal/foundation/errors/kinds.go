package errors

import (
	"time"

	"git.home.luguber.info/inful/svcerr/internal/foundation"
	"git.home.luguber.info/inful/svcerr/internal/foundation/normalization"
)

// Kind discriminates the closed set of failure categories.
//
// Adding a kind is a breaking change on purpose: it adds a method to Visitor,
// so every exhaustive consumer stops compiling until it handles the new kind.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNetwork
	KindAuthentication
	KindAPI
	KindValidation
	KindConfiguration
	KindSerialization
	KindBusiness
	KindTimeout
	KindRateLimit
	KindServiceUnavailable
	KindInternal
)

var kindNames = [...]string{
	KindUnknown:            "unknown",
	KindNetwork:            "network",
	KindAuthentication:     "authentication",
	KindAPI:                "api",
	KindValidation:         "validation",
	KindConfiguration:      "configuration",
	KindSerialization:      "serialization",
	KindBusiness:           "business",
	KindTimeout:            "timeout",
	KindRateLimit:          "rate_limit",
	KindServiceUnavailable: "service_unavailable",
	KindInternal:           "internal",
}

var kindNormalizer = normalization.NewEnumNormalizer("error kind", func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for _, k := range Kinds() {
		m[k.String()] = k
	}
	return m
}(), KindUnknown)

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// Kinds returns every concrete kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindNetwork, KindAuthentication, KindAPI, KindValidation, KindConfiguration,
		KindSerialization, KindBusiness, KindTimeout, KindRateLimit,
		KindServiceUnavailable, KindInternal,
	}
}

// ParseKind converts user input such as "rate-limit" into a Kind.
func ParseKind(raw string) (Kind, error) {
	return kindNormalizer.NormalizeWithValidation(raw)
}

// Error is the sealed taxonomy value every failing SDK operation returns.
// Only the concrete *XxxError types of this package implement it.
type Error interface {
	error

	Kind() Kind
	// Code is total and pure; kinds without an embedded code return a fixed default.
	Code() Code
	// Severity is always Code().Severity().
	Severity() Severity
	// Message is the diagnostic message. Never show it to end users.
	Message() string
	// UserMessage is a short localized text safe for end users.
	UserMessage() string
	// Context is never nil.
	Context() *ErrorContext

	Retryable() bool
	// RetryDelay is the wait before retry attempt (0-based); None when the
	// caller has to pick its own delay or must not retry.
	RetryDelay(attempt int) foundation.Option[time.Duration]

	// Record flattens the value for telemetry. It never fails.
	Record() Record
	// Clone returns an independent copy without the live causal source.
	Clone() Error

	sealed()
}

// Visitor handles every kind. Visit(e, v) calls exactly one method.
type Visitor[R any] interface {
	Network(*NetworkError) R
	Authentication(*AuthenticationError) R
	API(*APIError) R
	Validation(*ValidationError) R
	Configuration(*ConfigurationError) R
	Serialization(*SerializationError) R
	Business(*BusinessError) R
	Timeout(*TimeoutError) R
	RateLimit(*RateLimitError) R
	ServiceUnavailable(*ServiceUnavailableError) R
	Internal(*InternalError) R
}

// Visit dispatches e to the matching Visitor method. A nil e yields the zero R.
func Visit[R any](e Error, v Visitor[R]) R {
	switch x := e.(type) {
	case *NetworkError:
		return v.Network(x)
	case *AuthenticationError:
		return v.Authentication(x)
	case *APIError:
		return v.API(x)
	case *ValidationError:
		return v.Validation(x)
	case *ConfigurationError:
		return v.Configuration(x)
	case *SerializationError:
		return v.Serialization(x)
	case *BusinessError:
		return v.Business(x)
	case *TimeoutError:
		return v.Timeout(x)
	case *RateLimitError:
		return v.RateLimit(x)
	case *ServiceUnavailableError:
		return v.ServiceUnavailable(x)
	case *InternalError:
		return v.Internal(x)
	default:
		var zero R
		return zero
	}
}
