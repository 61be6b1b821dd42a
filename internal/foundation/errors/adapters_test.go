package errors

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestCLIErrorAdapterExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"foreign", stdErrors.New("plain"), ExitGeneral},
		{"validation", New(KindValidation).Build(), ExitUsage},
		{"configuration", New(KindConfiguration).Build(), ExitConfig},
		{"authentication", New(KindAuthentication).Build(), ExitAuth},
		{"network", New(KindNetwork).Build(), ExitExternal},
		{"api", New(KindAPI).Build(), ExitExternal},
		{"serialization", New(KindSerialization).Build(), ExitSerialization},
		{"business", New(KindBusiness).Build(), ExitBusiness},
		{"timeout", New(KindTimeout).Build(), ExitTransient},
		{"rate limit", New(KindRateLimit).Build(), ExitTransient},
		{"unavailable", New(KindServiceUnavailable).Build(), ExitTransient},
		{"internal", New(KindInternal).Build(), ExitInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tc.err); got != tc.want {
				t.Errorf("expected exit code %d, got %d", tc.want, got)
			}
		})
	}
}

func TestCLIErrorAdapterFormat(t *testing.T) {
	e := New(KindTimeout).Operation("orders.get").Build()

	quiet := NewCLIErrorAdapter(false, nil)
	assert.Equal(t, "Error: the request timed out, please retry later (timeout)", quiet.FormatError(e))

	german := NewCLIErrorAdapter(false, nil).WithLanguage(language.German)
	assert.Equal(t, "Error: Zeitüberschreitung der Anfrage, bitte später erneut versuchen (timeout)", german.FormatError(e))

	verbose := NewCLIErrorAdapter(true, nil)
	assert.Equal(t, e.Error(), verbose.FormatError(e))

	assert.Equal(t, "Error: plain", quiet.FormatError(stdErrors.New("plain")))
	assert.Equal(t, "", quiet.FormatError(nil))
}

func TestCLIErrorAdapterHandleError(t *testing.T) {
	var logs, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewJSONHandler(&logs, nil)))
	adapter.out = &out
	exitCode := -1
	adapter.exit = func(code int) { exitCode = code }

	adapter.HandleError(New(KindConfiguration).Message("missing endpoint").Build())

	assert.Equal(t, ExitConfig, exitCode)
	assert.Contains(t, out.String(), "the client is misconfigured")
	assert.Contains(t, logs.String(), `"error_code":"invalid_config"`)
	assert.Contains(t, logs.String(), "missing endpoint")

	// Low severity errors are not logged in quiet mode.
	logs.Reset()
	adapter.HandleError(New(KindAPI).Status(404).Build())
	assert.Equal(t, ExitExternal, exitCode)
	assert.Empty(t, logs.String())

	exitCode = -1
	adapter.HandleError(nil)
	assert.Equal(t, -1, exitCode)
}

func TestSlogLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, slogLevelFor(SeverityLow))
	assert.Equal(t, slog.LevelWarn, slogLevelFor(SeverityMedium))
	assert.Equal(t, slog.LevelError, slogLevelFor(SeverityHigh))
	assert.Equal(t, slog.LevelError, slogLevelFor(SeverityCritical))
}

func TestHTTPErrorAdapterStatusCodes(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)

	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{stdErrors.New("plain"), http.StatusInternalServerError},
		{New(KindNetwork).Build(), http.StatusBadGateway},
		{New(KindAuthentication).Build(), http.StatusUnauthorized},
		{New(KindAuthentication).Code(CodeForbidden).Build(), http.StatusForbidden},
		{New(KindAPI).Status(404).Build(), http.StatusNotFound},
		{New(KindValidation).Build(), http.StatusBadRequest},
		{New(KindConfiguration).Build(), http.StatusInternalServerError},
		{New(KindSerialization).Build(), http.StatusBadGateway},
		{New(KindBusiness).Build(), http.StatusUnprocessableEntity},
		{New(KindBusiness).Code(CodeConflict).Build(), http.StatusConflict},
		{New(KindTimeout).Build(), http.StatusGatewayTimeout},
		{New(KindRateLimit).Build(), http.StatusTooManyRequests},
		{New(KindServiceUnavailable).Build(), http.StatusServiceUnavailable},
		{New(KindInternal).Build(), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := adapter.StatusCodeFor(tc.err); got != tc.want {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestHTTPErrorAdapterWriteErrorResponse(t *testing.T) {
	var logs bytes.Buffer
	adapter := NewHTTPErrorAdapter(slog.New(slog.NewJSONHandler(&logs, nil)))

	e := New(KindRateLimit).
		Window(2500 * time.Millisecond).
		RequestID("req-http").
		Message("ignored").
		With("tenant", "t1").
		Build()

	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.5")
	rec := httptest.NewRecorder()

	adapter.WriteErrorResponse(rec, req, e)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "3", rec.Header().Get("Retry-After"))

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Zu viele Anfragen, bitte langsamer", body.Error)
	assert.Equal(t, "rate_limited", body.Code)
	assert.Equal(t, "rate_limit", body.Kind)
	assert.Equal(t, "medium", body.Severity)
	assert.Equal(t, "req-http", body.RequestID)
	assert.True(t, body.Retryable)
	assert.Equal(t, int64(2500), *body.RetryAfterMS)
	assert.Equal(t, map[string]string{"tenant": "t1"}, body.Details)

	assert.Contains(t, logs.String(), `"error_code":"rate_limited"`)
}

func TestHTTPErrorAdapterHidesDiagnostics(t *testing.T) {
	adapter := NewHTTPErrorAdapter(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))

	e := New(KindInternal).Message("nil pointer in decoder").Source(stdErrors.New("secret stack")).Build()
	rec := httptest.NewRecorder()
	adapter.WriteErrorResponse(rec, httptest.NewRequest(http.MethodGet, "/", nil), e)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, strings.Contains(rec.Body.String(), "nil pointer"))
	assert.False(t, strings.Contains(rec.Body.String(), "secret stack"))
	assert.Empty(t, rec.Header().Get("Retry-After"))

	foreign := adapter.FormatErrorResponse(stdErrors.New("db password wrong"), language.English)
	assert.Equal(t, DefaultUserMessage(KindInternal), foreign.Error)
	assert.Equal(t, "internal", foreign.Code)

	ok := httptest.NewRecorder()
	adapter.WriteErrorResponse(ok, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusOK, ok.Code)
}
