package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
)

const component = "config"

type problem struct {
	field string
	msg   string
}

// Validate checks the configuration and reports every problem found as a
// single Configuration error. The first offending field is recorded under
// the "field" context key.
func (c *Config) Validate() error {
	var problems []problem
	add := func(field, format string, args ...any) {
		problems = append(problems, problem{field: field, msg: fmt.Sprintf(format, args...)})
	}

	if _, err := c.Retry.Policy(); err != nil {
		add("retry", "%v", err)
	}
	if c.Retry.MaxRetries < 0 {
		add("retry.max_retries", "must not be negative")
	}

	if _, err := language.Parse(c.Locale); err != nil {
		add("locale", "invalid language tag %q", c.Locale)
	}

	s := c.Sinks
	if s.Prometheus.Enabled {
		if s.Prometheus.Addr == "" {
			add("sinks.prometheus.addr", "required when prometheus is enabled")
		}
		if !strings.HasPrefix(s.Prometheus.Path, "/") {
			add("sinks.prometheus.path", "must start with '/'")
		}
	}
	if s.NATS.Enabled {
		checkURL(add, "sinks.nats.url", s.NATS.URL, "nats", "tls")
		if s.NATS.Subject == "" {
			add("sinks.nats.subject", "required when nats is enabled")
		}
	}
	if s.Redis.Enabled {
		checkURL(add, "sinks.redis.url", s.Redis.URL, "redis", "rediss")
		if s.Redis.Stream == "" {
			add("sinks.redis.stream", "required when redis is enabled")
		}
		if s.Redis.MaxLen < 0 {
			add("sinks.redis.max_len", "must not be negative")
		}
	}
	if s.SQLite.Enabled && s.SQLite.Path == "" {
		add("sinks.sqlite.path", "required when sqlite is enabled")
	}
	if s.SQLite.Retention != "" {
		checkPositiveDuration(add, "sinks.sqlite.retention", s.SQLite.Retention)
	}
	if s.Buffer.Enabled {
		checkPositiveDuration(add, "sinks.buffer.interval", s.Buffer.Interval)
		if s.Buffer.Size <= 0 {
			add("sinks.buffer.size", "must be positive")
		}
	}

	if len(problems) == 0 {
		return nil
	}

	msgs := make([]string, 0, len(problems))
	for _, p := range problems {
		msgs = append(msgs, p.field+": "+p.msg)
	}
	return errors.New(errors.KindConfiguration).
		Message("invalid configuration: " + strings.Join(msgs, "; ")).
		Component(component).
		With("field", problems[0].field).
		With("problems", fmt.Sprint(len(problems))).
		Build()
}

func checkURL(add func(string, string, ...any), field, raw string, schemes ...string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		add(field, "invalid URL %q", raw)
		return
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return
		}
	}
	add(field, "unsupported scheme %q (want one of %s)", u.Scheme, strings.Join(schemes, ", "))
}

func checkPositiveDuration(add func(string, string, ...any), field, raw string) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		add(field, "invalid duration %q", raw)
		return
	}
	if d <= 0 {
		add(field, "must be positive")
	}
}

func configError(field, msg string) error {
	return errors.New(errors.KindConfiguration).
		Message(msg).
		Component(component).
		With("field", field).
		Build()
}
