package retry

import (
	"math"
	"testing"
	"time"
)

// TestDefaultPolicy verifies the baseline default values.
func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Mode != ModeExponential {
		t.Fatalf("expected exponential default mode got %s", p.Mode)
	}
	if p.Initial != time.Second {
		t.Fatalf("expected initial 1s got %v", p.Initial)
	}
	if p.Max != 30*time.Second {
		t.Fatalf("expected max 30s got %v", p.Max)
	}
	if p.MaxRetries != 3 {
		t.Fatalf("expected max retries 3 got %d", p.MaxRetries)
	}
	if !p.Retryable() {
		t.Fatalf("default policy should be retryable")
	}
	if NoRetry().Retryable() {
		t.Fatalf("NoRetry policy should not be retryable")
	}
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(ModeFixed, 5*time.Second, 2*time.Second, 5)
	if p.Initial != 2*time.Second {
		t.Fatalf("expected clamped initial 2s got %v", p.Initial)
	}
	if p.Max != 2*time.Second {
		t.Fatalf("expected max 2s got %v", p.Max)
	}
	if p.Mode != ModeFixed {
		t.Fatalf("expected fixed mode got %s", p.Mode)
	}
	if p.MaxRetries != 5 {
		t.Fatalf("expected maxRetries 5 got %d", p.MaxRetries)
	}
}

// TestDelayModes ensures fixed, linear, exponential behave and respect cap.
func TestDelayModes(t *testing.T) {
	fixed := NewPolicy(ModeFixed, 100*time.Millisecond, 500*time.Millisecond, 3)
	for i := 0; i < 3; i++ {
		if d := fixed.Delay(i); d != 100*time.Millisecond {
			t.Fatalf("fixed attempt %d expected 100ms got %v", i, d)
		}
	}

	linear := NewPolicy(ModeLinear, 100*time.Millisecond, 250*time.Millisecond, 5)
	// attempts: 0->100ms,1->200ms,2->cap 250ms,3->cap 250ms
	cases := []struct {
		attempt int
		want    time.Duration
	}{{0, 100 * time.Millisecond}, {1, 200 * time.Millisecond}, {2, 250 * time.Millisecond}, {3, 250 * time.Millisecond}}
	for _, c := range cases {
		if got := linear.Delay(c.attempt); got != c.want {
			t.Fatalf("linear attempt %d expected %v got %v", c.attempt, c.want, got)
		}
	}

	exp := NewPolicy(ModeExponential, 50*time.Millisecond, 160*time.Millisecond, 5)
	// 0->50,1->100,2->160 (cap),3->160
	expCases := []struct {
		attempt int
		want    time.Duration
	}{{0, 50 * time.Millisecond}, {1, 100 * time.Millisecond}, {2, 160 * time.Millisecond}, {3, 160 * time.Millisecond}}
	for _, c := range expCases {
		if got := exp.Delay(c.attempt); got != c.want {
			t.Fatalf("exp attempt %d expected %v got %v", c.attempt, c.want, got)
		}
	}
}

// TestDelayEdgeCases ensures negative attempts clamp to the first delay and huge attempts don't overflow.
func TestDelayEdgeCases(t *testing.T) {
	p := NewPolicy(ModeLinear, 10*time.Millisecond, 20*time.Millisecond, 1)
	if d := p.Delay(-1); d != 10*time.Millisecond {
		t.Fatalf("attempt -1 expected 10ms got %v", d)
	}

	exp := Policy{Mode: ModeExponential, Initial: time.Second, Max: 32 * time.Second, MaxRetries: 10}
	if d := exp.Delay(1000); d != 32*time.Second {
		t.Fatalf("attempt 1000 expected cap 32s got %v", d)
	}

	uncapped := Policy{Mode: ModeExponential, Initial: time.Second}
	if d := uncapped.Delay(200); d <= 0 {
		t.Fatalf("uncapped exponential overflowed: %v", d)
	}
	uncappedLinear := Policy{Mode: ModeLinear, Initial: time.Hour}
	if d := uncappedLinear.Delay(1 << 40); d <= 0 {
		t.Fatalf("uncapped linear overflowed: %v", d)
	}
}

// TestDelayExtremeAttempts keeps Delay total for degenerate policies and huge attempts.
func TestDelayExtremeAttempts(t *testing.T) {
	zeroExp := Policy{Mode: ModeExponential, Initial: 0, Max: time.Second, MaxRetries: 3}
	done := make(chan time.Duration, 1)
	go func() { done <- zeroExp.Delay(math.MaxInt) }()
	select {
	case d := <-done:
		if d != 0 {
			t.Fatalf("zero initial expected 0 got %v", d)
		}
	case <-time.After(time.Second):
		t.Fatal("exponential delay with zero initial did not return")
	}

	linear := Policy{Mode: ModeLinear, Initial: 3, Max: 0}
	if d := linear.Delay(math.MaxInt); d != time.Duration(math.MaxInt64) {
		t.Fatalf("uncapped linear at max attempt expected saturation got %v", d)
	}
	capped := Policy{Mode: ModeLinear, Initial: time.Second, Max: 5 * time.Second}
	if d := capped.Delay(math.MaxInt); d != 5*time.Second {
		t.Fatalf("capped linear at max attempt expected 5s got %v", d)
	}
	negative := Policy{Mode: ModeFixed, Initial: -time.Second, Max: time.Second}
	if d := negative.Delay(0); d != 0 {
		t.Fatalf("negative initial expected 0 got %v", d)
	}
}

// TestAllows covers the retry budget check.
func TestAllows(t *testing.T) {
	p := NewPolicy(ModeFixed, time.Second, time.Second, 2)
	if !p.Allows(0) || !p.Allows(1) {
		t.Fatalf("expected attempts 0 and 1 to be allowed")
	}
	if p.Allows(2) || p.Allows(-1) {
		t.Fatalf("expected attempts 2 and -1 to be rejected")
	}
}

// TestValidate covers validation error paths.
func TestValidate(t *testing.T) {
	badInitial := Policy{Mode: ModeLinear, Initial: 0, Max: time.Second, MaxRetries: 1}
	if err := badInitial.Validate(); err == nil {
		t.Fatalf("expected error for zero initial")
	}
	badMax := Policy{Mode: ModeLinear, Initial: time.Second, Max: 0, MaxRetries: 1}
	if err := badMax.Validate(); err == nil {
		t.Fatalf("expected error for zero max")
	}
	badRetries := Policy{Mode: ModeLinear, Initial: time.Second, Max: 2 * time.Second, MaxRetries: -1}
	if err := badRetries.Validate(); err == nil {
		t.Fatalf("expected error for negative retries")
	}
	badMode := Policy{Mode: "spiral", Initial: time.Second, Max: 2 * time.Second}
	if err := badMode.Validate(); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	good := Policy{Mode: ModeLinear, Initial: time.Second, Max: 2 * time.Second, MaxRetries: 0}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

// TestModeParsing leaves mode default when unknown string supplied.
func TestModeParsing(t *testing.T) {
	p := NewPolicy("weird", 250*time.Millisecond, 500*time.Millisecond, 1)
	if p.Mode != ModeExponential {
		t.Fatalf("unknown mode should fall back to exponential got %s", p.Mode)
	}
	if m := NormalizeMode("  Linear "); m != ModeLinear {
		t.Fatalf("expected linear got %q", m)
	}
	if _, err := ParseMode("spiral"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
