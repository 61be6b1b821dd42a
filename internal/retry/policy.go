package retry

import (
	"fmt"
	"math"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/foundation/normalization"
)

// Mode enumerates supported backoff strategies for retries.
type Mode string

const (
	ModeFixed       Mode = "fixed"
	ModeLinear      Mode = "linear"
	ModeExponential Mode = "exponential"
)

var modeNormalizer = normalization.NewEnumNormalizer("retry mode", map[string]Mode{
	"fixed":       ModeFixed,
	"linear":      ModeLinear,
	"exponential": ModeExponential,
}, "")

// NormalizeMode converts arbitrary user input (case-insensitive) into a typed mode, returning empty string for unknown.
func NormalizeMode(raw string) Mode {
	return modeNormalizer.Normalize(raw)
}

// ParseMode is NormalizeMode with an error for unknown input.
func ParseMode(raw string) (Mode, error) {
	return modeNormalizer.NormalizeWithValidation(raw)
}

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction and only answers questions; it never waits.
type Policy struct {
	Mode       Mode          // fixed|linear|exponential
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // maximum retry attempts after the first failure
}

// DefaultPolicy returns the policy embedded in network errors when the caller
// supplies none (exponential, 1s initial, 30s cap, 3 retries).
func DefaultPolicy() Policy {
	return Policy{Mode: ModeExponential, Initial: time.Second, Max: 30 * time.Second, MaxRetries: 3}
}

// NoRetry returns a policy that never retries.
func NoRetry() Policy {
	return Policy{Mode: ModeFixed, Initial: time.Second, Max: time.Second, MaxRetries: 0}
}

// NewPolicy builds a policy from raw config fields; zero/invalid values fall back to defaults.
func NewPolicy(mode Mode, initial, maxDuration time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	switch mode {
	case ModeFixed, ModeLinear, ModeExponential:
		p.Mode = mode
	default:
		// unknown -> keep default
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Retryable reports whether the policy allows any retry at all.
func (p Policy) Retryable() bool {
	return p.MaxRetries > 0
}

// Allows reports whether a retry numbered attempt (0-based) is within budget.
func (p Policy) Allows(attempt int) bool {
	return attempt >= 0 && attempt < p.MaxRetries
}

// Delay returns the backoff delay before retry attempt (0-based: first retry => 0).
// Negative attempts are treated as 0. The result never exceeds Max when Max > 0
// and is 0 when Initial is not positive.
func (p Policy) Delay(attempt int) time.Duration {
	if p.Initial <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	limit := p.Max
	if limit <= 0 {
		limit = time.Duration(math.MaxInt64)
	}
	switch p.Mode {
	case ModeFixed:
		return min(p.Initial, limit)
	case ModeExponential:
		// d at least doubles per step, so this stops within 63 iterations.
		d := p.Initial
		for i := 0; i < attempt; i++ {
			if d > limit/2 {
				return limit
			}
			d *= 2
		}
		return min(d, limit)
	default: // linear
		if int64(attempt) >= int64(limit/p.Initial) {
			return limit
		}
		return min(time.Duration(attempt+1)*p.Initial, limit)
	}
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return fmt.Errorf("initial must be >0")
	}
	if p.Max <= 0 {
		return fmt.Errorf("max must be >0")
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if p.Mode != "" && modeNormalizer.Normalize(string(p.Mode)) == "" {
		return fmt.Errorf("unknown retry mode %q", p.Mode)
	}
	return nil
}

// String renders the policy for logs.
func (p Policy) String() string {
	return fmt.Sprintf("%s(initial=%s max=%s retries=%d)", p.Mode, p.Initial, p.Max, p.MaxRetries)
}
