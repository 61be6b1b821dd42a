package errors

import (
	stdErrors "errors"

	"git.home.luguber.info/inful/svcerr/internal/foundation"
)

// As finds the first taxonomy value in err's chain.
func As(err error) (Error, bool) {
	if err == nil {
		return nil, false
	}
	var e Error
	if stdErrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of the first taxonomy value in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind()
	}
	return KindUnknown
}

// IsKind reports whether err's chain contains a taxonomy value of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// CodeOf returns the code of err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code()
	}
	return CodeInternal
}

// IsRetryable reports whether err is a retryable taxonomy value.
func IsRetryable(err error) bool {
	e, ok := As(err)
	return ok && e.Retryable()
}

// IsFatal reports whether err signals a caller-side or SDK defect that no
// retry can fix: Critical severity, Configuration, or Validation. Foreign
// errors are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	e, ok := As(err)
	if !ok {
		return true
	}
	switch e.Kind() {
	case KindConfiguration, KindValidation:
		return true
	default:
		return e.Severity() == SeverityCritical
	}
}

// Wrap returns err as a taxonomy value: taxonomy values pass through and
// foreign errors become Internal errors sourced from err. nil stays nil.
func Wrap(err error) Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	return New(KindInternal).Message("unclassified failure").Source(err).Build()
}

// ResultOf lifts a (value, error) pair into the uniform result channel.
func ResultOf[T any](value T, err error) foundation.Result[T, Error] {
	return foundation.FromTuple(value, err, Wrap)
}
