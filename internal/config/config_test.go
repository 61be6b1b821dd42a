package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/retry"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	p, err := cfg.Retry.Policy()
	require.NoError(t, err)
	assert.Equal(t, retry.ModeExponential, p.Mode)
	assert.Equal(t, time.Second, p.Initial)
	assert.Equal(t, 30*time.Second, p.Max)
	assert.Equal(t, 3, p.MaxRetries)
	assert.Equal(t, language.English, cfg.Language())
}

func TestParseFullConfig(t *testing.T) {
	t.Setenv("SVCERR_TEST_NATS", "nats://broker.internal:4222")

	data := `
version: "1.0"
logging:
  level: DEBUG
  format: Json
retry:
  mode: linear
  initial: 500ms
  max: 4s
  max_retries: 5
locale: de
sinks:
  log:
    enabled: false
  prometheus:
    enabled: true
    addr: ":9100"
    path: /metrics
  nats:
    enabled: true
    url: ${SVCERR_TEST_NATS}
    subject: sdk.errors
  redis:
    enabled: true
    url: redis://cache:6379/1
    stream: sdk:errors
    max_len: 500
  sqlite:
    enabled: true
    path: /var/lib/svcerr/records.db
    retention: 24h
  buffer:
    enabled: true
    interval: 2s
    size: 50
`
	cfg, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, language.German, cfg.Language())
	assert.False(t, cfg.Sinks.Log.Enabled)
	assert.Equal(t, "nats://broker.internal:4222", cfg.Sinks.NATS.URL)
	assert.Equal(t, int64(500), cfg.Sinks.Redis.MaxLen)
	assert.Equal(t, 2*time.Second, cfg.Sinks.Buffer.IntervalDuration())
	assert.Equal(t, 24*time.Hour, cfg.Sinks.SQLite.RetentionDuration())

	p, err := cfg.Retry.Policy()
	require.NoError(t, err)
	assert.Equal(t, retry.ModeLinear, p.Mode)
	assert.Equal(t, 5, p.MaxRetries)
}

func TestParseKeepsDefaultsForOmittedSections(t *testing.T) {
	cfg, err := Parse([]byte(`version: "1.0"`))
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, "svcerr.errors", cfg.Sinks.NATS.Subject)
	assert.True(t, cfg.Sinks.Log.Enabled)
}

func TestParseRejectsWrongVersion(t *testing.T) {
	_, err := Parse([]byte(`version: "2.0"`))
	require.Error(t, err)
	assert.Equal(t, errors.KindConfiguration, errors.KindOf(err))
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("version: [unterminated"))
	require.Error(t, err)
	e, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeInvalidConfig, e.Code())
	assert.Contains(t, e.Message(), "failed to parse configuration")
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.Retry.Mode = "random"
	cfg.Locale = "not a locale!"
	cfg.Sinks.NATS.Enabled = true
	cfg.Sinks.NATS.URL = "http://broker:4222"
	cfg.Sinks.Redis.Enabled = true
	cfg.Sinks.Redis.Stream = ""
	cfg.Sinks.Buffer.Enabled = true
	cfg.Sinks.Buffer.Interval = "-1s"

	err := cfg.Validate()
	require.Error(t, err)

	e, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindConfiguration, e.Kind())
	assert.True(t, errors.IsFatal(err))

	field, _ := e.Context().Get("field")
	assert.Equal(t, "retry", field)
	count, _ := e.Context().Get("problems")
	assert.Equal(t, "5", count)

	for _, want := range []string{"locale", "sinks.nats.url", "sinks.redis.stream", "sinks.buffer.interval"} {
		if !strings.Contains(e.Message(), want) {
			t.Errorf("expected message to mention %s, got %q", want, e.Message())
		}
	}
}

func TestValidatePrometheusPath(t *testing.T) {
	cfg := Default()
	cfg.Sinks.Prometheus.Enabled = true
	cfg.Sinks.Prometheus.Path = "metrics"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sinks.prometheus.path")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.KindConfiguration, errors.KindOf(err))
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(".env", []byte("SVCERR_TEST_STREAM=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SVCERR_TEST_STREAM") })

	path := filepath.Join(dir, "svcerr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\nsinks:\n  redis:\n    stream: ${SVCERR_TEST_STREAM}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Sinks.Redis.Stream)
}

func TestInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svcerr.yaml")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	require.NoError(t, Init(path, false))
	assert.Error(t, Init(path, false), "existing file must not be overwritten")
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Sinks.Prometheus.Enabled)
	assert.True(t, cfg.Sinks.SQLite.Enabled)
}

func TestLogLevelNormalization(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel(" Warning "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("loud"))
	assert.Equal(t, slog.LevelDebug, LogLevelDebug.SlogLevel())
	assert.Equal(t, slog.LevelError, LogLevelError.SlogLevel())
	assert.Equal(t, LogFormatText, NormalizeLogFormat("xml"))
}
