package errors

import (
	"math"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/retry"
)

// apiBackoff yields min(2^attempt, 2^5) seconds.
var apiBackoff = retry.Policy{
	Mode:       retry.ModeExponential,
	Initial:    time.Second,
	Max:        32 * time.Second,
	MaxRetries: math.MaxInt,
}

// NextRetry answers, without waiting, whether a retry loop should reissue the
// operation that failed with err, and after how long. attempt is 0-based.
//
// The error's own delay wins; kinds that leave the delay to the caller
// (Timeout, ServiceUnavailable without retry_after) use fallback. fallback
// also bounds the number of retries.
func NextRetry(err error, attempt int, fallback retry.Policy) (time.Duration, bool) {
	e, ok := As(err)
	if !ok || !e.Retryable() || !fallback.Allows(attempt) {
		return 0, false
	}
	if d, ok := e.RetryDelay(attempt).Get(); ok {
		return d, true
	}
	return fallback.Delay(attempt), true
}
