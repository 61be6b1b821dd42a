package config

import (
	"fmt"
	"os"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
)

// CurrentVersion is the configuration format version understood by Load.
const CurrentVersion = "1.0"

// Config is the svcerr configuration file.
type Config struct {
	Version string        `yaml:"version"`
	Logging LoggingConfig `yaml:"logging"`
	Retry   RetryConfig   `yaml:"retry"`
	Sinks   SinksConfig   `yaml:"sinks"`
	// Locale selects the language of user-facing messages (BCP 47 tag).
	Locale string `yaml:"locale"`
}

// LoggingConfig controls the slog handler built by the CLI.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads a configuration file. Environment variables referenced as
// ${NAME} are expanded after .env files have been loaded.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, configError("path", fmt.Sprintf("configuration file not found: %s", configPath))
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes, normalizes, defaults and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.New(errors.KindConfiguration).
			Message("failed to parse configuration: " + errors.FromDecode(err, "yaml").Message()).
			Component(component).
			With("detail", err.Error()).
			Build()
	}

	if cfg.Version != CurrentVersion {
		return nil, configError("version", fmt.Sprintf("unsupported configuration version %q (expected %s)", cfg.Version, CurrentVersion))
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Retry: RetryConfig{
			Mode:       "exponential",
			Initial:    "1s",
			Max:        "30s",
			MaxRetries: 3,
		},
		Sinks: SinksConfig{
			Log: LogSinkConfig{Enabled: true},
			Prometheus: PrometheusConfig{
				Addr: ":9464",
				Path: "/metrics",
			},
			NATS: NATSConfig{
				URL:     "nats://127.0.0.1:4222",
				Subject: "svcerr.errors",
			},
			Redis: RedisConfig{
				URL:    "redis://127.0.0.1:6379/0",
				Stream: "svcerr:errors",
				MaxLen: 10000,
			},
			SQLite: SQLiteConfig{
				Path:      "svcerr.db",
				Retention: "168h",
			},
			Buffer: BufferConfig{
				Interval: "5s",
				Size:     100,
			},
		},
		Locale: "en",
	}
}

// Language returns the configured locale as a language tag. An unparsable
// locale yields English; Validate reports it.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

func (c *Config) normalize() {
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Default()
	example.Sinks.Prometheus.Enabled = true
	example.Sinks.SQLite.Enabled = true
	example.Sinks.NATS.URL = "${NATS_URL}"
	example.Sinks.Redis.URL = "${REDIS_URL}"

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
