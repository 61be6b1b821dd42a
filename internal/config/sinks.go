package config

import "time"

// SinksConfig selects which telemetry sinks receive error records.
type SinksConfig struct {
	Log        LogSinkConfig    `yaml:"log"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
	NATS       NATSConfig       `yaml:"nats"`
	Redis      RedisConfig      `yaml:"redis"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	Buffer     BufferConfig     `yaml:"buffer"`
}

type LogSinkConfig struct {
	Enabled bool `yaml:"enabled"`
}

// PrometheusConfig controls the metrics sink and its scrape endpoint.
type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Stream  string `yaml:"stream"`
	MaxLen  int64  `yaml:"max_len"`
}

// SQLiteConfig controls the local record store. Retention bounds how long
// records are kept by `history --prune`.
type SQLiteConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Retention string `yaml:"retention"`
}

// BufferConfig batches records before they reach the network sinks.
type BufferConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"`
	Size     int    `yaml:"size"`
}

// IntervalDuration returns the parsed flush interval. Validate guarantees it parses.
func (b BufferConfig) IntervalDuration() time.Duration {
	d, _ := time.ParseDuration(b.Interval)
	return d
}

// RetentionDuration returns the parsed retention. Validate guarantees it parses.
func (s SQLiteConfig) RetentionDuration() time.Duration {
	d, _ := time.ParseDuration(s.Retention)
	return d
}
