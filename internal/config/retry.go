package config

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/retry"
)

// RetryConfig describes the fallback retry policy for errors that leave the
// delay to the caller.
type RetryConfig struct {
	Mode       string `yaml:"mode"`
	Initial    string `yaml:"initial"`
	Max        string `yaml:"max"`
	MaxRetries int    `yaml:"max_retries"`
}

// Policy converts the section into a retry.Policy.
func (r RetryConfig) Policy() (retry.Policy, error) {
	mode, err := retry.ParseMode(r.Mode)
	if err != nil {
		return retry.Policy{}, err
	}
	initial, err := parseDuration("initial", r.Initial)
	if err != nil {
		return retry.Policy{}, err
	}
	maxDelay, err := parseDuration("max", r.Max)
	if err != nil {
		return retry.Policy{}, err
	}

	p := retry.NewPolicy(mode, initial, maxDelay, r.MaxRetries)
	if err := p.Validate(); err != nil {
		return retry.Policy{}, err
	}
	return p, nil
}

func parseDuration(field, raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration %q: %w", field, raw, err)
	}
	return d, nil
}
