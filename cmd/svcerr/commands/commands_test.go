package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/svcerr/internal/config"
	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/metrics"
	"git.home.luguber.info/inful/svcerr/internal/recordstore"
)

func testGlobal(t *testing.T) (*Global, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &Global{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: config.Default(),
		Lang:   language.English,
		Out:    &out,
	}, &out
}

type memorySink struct {
	records []errors.Record
	closed  bool
}

func (m *memorySink) Emit(_ context.Context, rec errors.Record) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memorySink) Close() error {
	m.closed = true
	return nil
}

func TestCodesCommand(t *testing.T) {
	g, out := testGlobal(t)
	require.NoError(t, (&CodesCmd{}).Run(g))
	assert.True(t, strings.HasPrefix(out.String(), "CODE"))
	assert.Contains(t, out.String(), "rate_limited")

	out.Reset()
	require.NoError(t, (&CodesCmd{JSON: true}).Run(g))
	var infos []codeInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &infos))
	assert.Len(t, infos, len(errors.Codes()))
}

func classifyOutput(t *testing.T, cmd *ClassifyCmd) classification {
	t.Helper()
	g, out := testGlobal(t)
	if cmd.Operation == "" {
		cmd.Operation = "cli.classify"
	}
	if cmd.Attempts == 0 {
		cmd.Attempts = 5
	}
	if cmd.Endpoint == "" {
		cmd.Endpoint = "GET /"
	}
	require.NoError(t, cmd.Run(g))

	var result classification
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	return result
}

func TestClassifyRateLimit(t *testing.T) {
	result := classifyOutput(t, &ClassifyCmd{HTTPStatus: 429, RetryAfter: "7", Endpoint: "POST /v1/orders"})

	assert.Equal(t, "rate_limit", result.Record.Kind)
	assert.Equal(t, errors.CodeRateLimited, result.Record.Code)
	assert.Equal(t, 429, result.HTTPStatus)
	assert.Equal(t, errors.ExitTransient, result.ExitCode)
	assert.False(t, result.Fatal)
	require.Len(t, result.Retries, 3)
	for _, step := range result.Retries {
		assert.Equal(t, int64(7000), step.DelayMS)
	}
	require.NotNil(t, result.Record.RequestID)
}

func TestClassifyTransportTimeoutUsesPolicy(t *testing.T) {
	result := classifyOutput(t, &ClassifyCmd{Transport: "timeout", Operation: "orders.get"})

	assert.Equal(t, "timeout", result.Record.Kind)
	assert.Equal(t, "orders.get", *result.Record.Operation)
	want := []int64{1000, 2000, 4000}
	require.Len(t, result.Retries, len(want))
	for i, step := range result.Retries {
		assert.Equal(t, want[i], step.DelayMS)
	}
}

func TestClassifyGRPC(t *testing.T) {
	result := classifyOutput(t, &ClassifyCmd{GRPCCode: "unavailable", Message: "draining"})
	assert.Equal(t, "service_unavailable", result.Record.Kind)

	result = classifyOutput(t, &ClassifyCmd{GRPCCode: "permission-denied"})
	assert.Equal(t, errors.CodeForbidden, result.Record.Code)
	assert.Empty(t, result.Retries)
}

func TestClassifySuccessStatus(t *testing.T) {
	g, out := testGlobal(t)
	require.NoError(t, (&ClassifyCmd{HTTPStatus: 204, Attempts: 1}).Run(g))
	assert.Contains(t, out.String(), "no error")
}

func TestClassifyRejectsBadInput(t *testing.T) {
	cases := map[string]*ClassifyCmd{
		"no source":         {},
		"two sources":       {HTTPStatus: 500, Transport: "timeout"},
		"status range":      {HTTPStatus: 700},
		"unknown grpc":      {GRPCCode: "SOMETIMES"},
		"unknown transport": {Transport: "gremlins"},
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			g, _ := testGlobal(t)
			err := cmd.Run(g)
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindValidation), "got %v", err)
		})
	}
}

func TestRecordCommandBuild(t *testing.T) {
	cmd := &RecordCmd{
		Kind:      "api",
		Status:    503,
		Endpoint:  "GET /v1/orders",
		Message:   "upstream down",
		Component: " orders ",
		With:      map[string]string{"tenant": "t1"},
	}
	ctx := context.Background()
	e, err := cmd.build(ctx)
	require.NoError(t, err)

	rec := e.Record()
	assert.Equal(t, errors.CodeServiceUnavailable, rec.Code)
	assert.Equal(t, "orders", *rec.Component)
	assert.Equal(t, "t1", rec.Context["tenant"])
}

func TestRecordCommandStrict(t *testing.T) {
	_, err := (&RecordCmd{Kind: "timeout", Strict: true}).build(context.Background())
	require.Error(t, err)

	e, err := (&RecordCmd{Kind: "timeout", Duration: time.Second, Strict: true}).build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, errors.KindTimeout, e.Kind())
}

func TestRecordCommandRejectsUnknownKind(t *testing.T) {
	_, err := (&RecordCmd{Kind: "gremlin"}).build(context.Background())
	assert.True(t, errors.IsKind(err, errors.KindValidation))

	_, err = (&RecordCmd{Kind: "api", Code: "nope"}).build(context.Background())
	assert.True(t, errors.IsKind(err, errors.KindValidation))
}

func TestRecordCommandRun(t *testing.T) {
	g, out := testGlobal(t)
	require.NoError(t, (&RecordCmd{Kind: "network", RequestID: "req-9"}).Run(g))

	var rec errors.Record
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "req-9", *rec.RequestID)
	assert.Equal(t, errors.CodeConnectionFailed, rec.Code)
}

func TestEmitRecords(t *testing.T) {
	in := strings.NewReader(`{"kind":"network","code":"connection_failed","severity":"high"}

{"kind":"timeout","code":"timeout","severity":"medium"}
`)
	s := &memorySink{}
	sent, err := emitRecords(context.Background(), s, in)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, errors.CodeTimeout, s.records[1].Code)
}

func TestEmitRecordsStopsAtMalformedLine(t *testing.T) {
	in := strings.NewReader("{\"kind\":\"network\",\"code\":\"connection_failed\"}\n{broken\n{\"kind\":\"timeout\"}\n")
	s := &memorySink{}
	sent, err := emitRecords(context.Background(), s, in)

	assert.Equal(t, 1, sent)
	require.Error(t, err)
	e, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindSerialization, e.Kind())
	line, _ := e.Context().Get("line")
	assert.Equal(t, "2", line)
}

func onlySQLite(path string) config.SinksConfig {
	cfg := config.Default().Sinks
	cfg.Log.Enabled = false
	cfg.Prometheus.Enabled = false
	cfg.NATS.Enabled = false
	cfg.Redis.Enabled = false
	cfg.SQLite.Enabled = true
	cfg.SQLite.Path = path
	return cfg
}

func TestBuildSinkWritesStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := buildSink(onlySQLite(path), logger, metrics.NoopRecorder{})
	require.NoError(t, err)
	rec := errors.New(errors.KindNetwork).RequestID("req-store").Build().Record()
	require.NoError(t, s.Emit(context.Background(), rec))
	require.NoError(t, s.Close())

	store, err := recordstore.NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	entries, err := store.GetByRequestID(context.Background(), "req-store")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Record.Timestamp.IsZero())
}

func TestBuildSinkNothingEnabled(t *testing.T) {
	cfg := onlySQLite("")
	cfg.SQLite.Enabled = false
	s, err := buildSink(cfg, slog.Default(), metrics.NoopRecorder{})
	require.NoError(t, err)
	assert.NoError(t, s.Emit(context.Background(), errors.Record{}))
	assert.NoError(t, s.Close())
}

func TestHistoryCommand(t *testing.T) {
	ctx := context.Background()
	store, err := recordstore.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	put := func(id string, kind errors.Kind, requestID string, age time.Duration) {
		rec := errors.New(kind).RequestID(requestID).Build().Record()
		rec.Timestamp = now.Add(-age)
		require.NoError(t, store.Append(ctx, id, rec))
	}
	put("a", errors.KindNetwork, "req-1", time.Hour)
	put("b", errors.KindNetwork, "req-2", 2*time.Hour)
	put("c", errors.KindTimeout, "req-1", 30*24*time.Hour)

	g, out := testGlobal(t)

	require.NoError(t, (&HistoryCmd{Since: 24 * time.Hour}).run(ctx, g, store, now))
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))

	out.Reset()
	require.NoError(t, (&HistoryCmd{RequestID: "req-1"}).run(ctx, g, store, now))
	assert.Contains(t, out.String(), `"id":"a"`)
	assert.Contains(t, out.String(), `"id":"c"`)

	out.Reset()
	require.NoError(t, (&HistoryCmd{Counts: true, Since: 24 * time.Hour}).run(ctx, g, store, now))
	assert.Contains(t, out.String(), "connection_failed")
	assert.NotContains(t, out.String(), "timeout")

	out.Reset()
	require.NoError(t, (&HistoryCmd{Prune: true}).run(ctx, g, store, now))
	assert.Equal(t, "pruned 1 record(s)\n", out.String())
}

func TestHistoryPruneNeedsRetention(t *testing.T) {
	g, _ := testGlobal(t)
	g.Config.Sinks.SQLite.Retention = ""
	err := (&HistoryCmd{Prune: true}).run(context.Background(), g, nil, time.Now())
	assert.True(t, errors.IsKind(err, errors.KindConfiguration))
}

func TestInitCommand(t *testing.T) {
	g, out := testGlobal(t)
	path := filepath.Join(t.TempDir(), "svcerr.yaml")

	require.NoError(t, (&InitCmd{}).Run(g, &CLI{Config: path}))
	assert.Contains(t, out.String(), "initialized successfully")

	err := (&InitCmd{}).Run(g, &CLI{Config: path})
	require.Error(t, err)

	require.NoError(t, (&InitCmd{Force: true}).Run(g, &CLI{Config: path}))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.CurrentVersion, cfg.Version)
}
