package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// everyKind builds one value per kind with only defaults.
func everyKind() []Error {
	out := make([]Error, 0, len(Kinds()))
	for _, k := range Kinds() {
		out = append(out, New(k).Build())
	}
	return out
}

func TestEveryKindHasContextAndStableCode(t *testing.T) {
	for _, e := range everyKind() {
		t.Run(e.Kind().String(), func(t *testing.T) {
			require.NotNil(t, e.Context())
			assert.Equal(t, e.Code(), e.Code())
			assert.Equal(t, e.Code().Severity(), e.Severity())
			assert.True(t, e.Code().Known(), "code %s not in table", e.Code())
			assert.NotPanics(t, func() { _ = e.Record() })
			assert.NotEmpty(t, e.Error())
			assert.NotEmpty(t, e.UserMessage())
		})
	}
}

func TestSeverityTable(t *testing.T) {
	cases := map[Code]Severity{
		CodeConnectionFailed:   SeverityHigh,
		CodeUnauthenticated:    SeverityHigh,
		CodeForbidden:          SeverityHigh,
		CodeBadRequest:         SeverityMedium,
		CodeNotFound:           SeverityLow,
		CodeConflict:           SeverityMedium,
		CodeRateLimited:        SeverityMedium,
		CodeUpstreamError:      SeverityHigh,
		CodeInvalidInput:       SeverityLow,
		CodeInvalidConfig:      SeverityCritical,
		CodeDecodeFailed:       SeverityHigh,
		CodeBusinessRule:       SeverityMedium,
		CodeTimeout:            SeverityMedium,
		CodeServiceUnavailable: SeverityHigh,
		CodeInternal:           SeverityCritical,
	}
	for code, want := range cases {
		if got := code.Severity(); got != want {
			t.Errorf("%s: expected %s, got %s", code, want, got)
		}
	}
	assert.Len(t, Codes(), len(cases))
	assert.Equal(t, SeverityCritical, Code("made_up").Severity())
	assert.False(t, Code("made_up").Known())
}

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, SeverityCritical.AtLeast(SeverityHigh))
	assert.True(t, SeverityHigh.AtLeast(SeverityHigh))
	assert.False(t, SeverityLow.AtLeast(SeverityMedium))
	assert.Less(t, SeverityLow, SeverityMedium)
	assert.Less(t, SeverityMedium, SeverityHigh)
	assert.Less(t, SeverityHigh, SeverityCritical)
}

func TestSeverityText(t *testing.T) {
	b, err := SeverityHigh.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "high", string(b))

	var s Severity
	require.NoError(t, s.UnmarshalText([]byte("Critical")))
	assert.Equal(t, SeverityCritical, s)
	assert.Error(t, s.UnmarshalText([]byte("catastrophic")))
	assert.Equal(t, "severity(9)", Severity(9).String())
}

func TestParseKindAndCode(t *testing.T) {
	k, err := ParseKind("Rate-Limit")
	require.NoError(t, err)
	assert.Equal(t, KindRateLimit, k)

	k, err = ParseKind(" service unavailable ")
	require.NoError(t, err)
	assert.Equal(t, KindServiceUnavailable, k)

	_, err = ParseKind("meteor")
	assert.Error(t, err)

	c, err := ParseCode("NOT_FOUND")
	require.NoError(t, err)
	assert.Equal(t, CodeNotFound, c)

	_, err = ParseCode("teapot")
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "rate_limit", KindRateLimit.String())
	assert.Equal(t, "unknown", Kind(200).String())
	assert.Len(t, Kinds(), 11)
}

func TestCodeForStatus(t *testing.T) {
	cases := []struct {
		status int
		want   Code
	}{
		{400, CodeBadRequest},
		{401, CodeUnauthenticated},
		{403, CodeForbidden},
		{404, CodeNotFound},
		{409, CodeConflict},
		{418, CodeBadRequest},
		{422, CodeInvalidInput},
		{429, CodeRateLimited},
		{500, CodeUpstreamError},
		{502, CodeUpstreamError},
		{503, CodeServiceUnavailable},
		{504, CodeTimeout},
		{200, CodeInternal},
		{0, CodeInternal},
	}
	for _, tc := range cases {
		if got := CodeForStatus(tc.status); got != tc.want {
			t.Errorf("CodeForStatus(%d): expected %s, got %s", tc.status, tc.want, got)
		}
	}
}

func TestFixedCodes(t *testing.T) {
	// Network and Timeout ignore code overrides.
	n := New(KindNetwork).Code(CodeBusinessRule).Build()
	assert.Equal(t, CodeConnectionFailed, n.Code())

	to := New(KindTimeout).Code(CodeBusinessRule).Build()
	assert.Equal(t, CodeTimeout, to.Code())
}

func TestCloneDropsLiveSourceKeepsText(t *testing.T) {
	src := stdErrors.New("dial tcp 10.0.0.1:443: connection refused")
	kinds := []Kind{KindNetwork, KindAPI, KindSerialization, KindInternal}
	for _, k := range kinds {
		t.Run(k.String(), func(t *testing.T) {
			e := New(k).Message("boom").Source(src).RequestID("r1").With("k", "v").Build()
			require.True(t, stdErrors.Is(e, src))

			c := e.Clone()
			assert.False(t, stdErrors.Is(c, src))
			assert.Nil(t, c.(interface{ Source() error }).Source())
			assert.Equal(t, src.Error(), c.(interface{ SourceText() string }).SourceText())
			assert.Equal(t, e.Message(), c.Message())
			assert.Equal(t, e.Code(), c.Code())
			assert.Equal(t, e.Context().FieldsCopy(), c.Context().FieldsCopy())
			assert.Equal(t, e.Context().RequestID(), c.Context().RequestID())
			assert.Equal(t, e.Error(), c.Error())
			assert.Equal(t, *e.Record().Source, *c.Record().Source)
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	for _, e := range everyKind() {
		c := e.Clone()
		assert.Equal(t, e.Kind(), c.Kind())
		assert.NotSame(t, e.Context(), c.Context())
		assert.Equal(t, e.Record(), c.Record())
	}
}

func TestSourceOnlyForCausalKinds(t *testing.T) {
	src := stdErrors.New("cause")
	for _, k := range []Kind{KindAuthentication, KindValidation, KindConfiguration, KindBusiness, KindTimeout, KindRateLimit, KindServiceUnavailable} {
		e := New(k).Source(src).Build()
		assert.False(t, stdErrors.Is(e, src), "%s should not keep a source", k)
		assert.Nil(t, e.Record().Source, "%s record should have no source", k)
	}
}

func TestErrorRendering(t *testing.T) {
	e := New(KindAPI).Status(503).Endpoint("GET /v1/orders").Message("upstream down").Build()
	assert.Equal(t, "[api:service_unavailable] GET /v1/orders 503: upstream down", e.Error())

	v := New(KindValidation).Field("email").Message("must contain @").Build()
	assert.Equal(t, "[validation:invalid_input] email: must contain @", v.Error())

	n := New(KindNetwork).Message("connection failed").Source(stdErrors.New("refused")).Build()
	assert.Equal(t, "[network:connection_failed] connection failed: refused", n.Error())
}

func TestStdlibWrappingTraversal(t *testing.T) {
	e := New(KindRateLimit).Window(5 * time.Second).Build()
	wrapped := fmt.Errorf("orders.list: %w", e)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindRateLimit, got.Kind())
	assert.Equal(t, KindRateLimit, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindRateLimit))
	assert.Equal(t, CodeRateLimited, CodeOf(wrapped))
	assert.True(t, IsRetryable(wrapped))

	var rl *RateLimitError
	require.True(t, stdErrors.As(wrapped, &rl))
	assert.Equal(t, 5*time.Second, rl.Window())
}

func TestHelpersOnForeignErrors(t *testing.T) {
	foreign := stdErrors.New("plain")
	_, ok := As(foreign)
	assert.False(t, ok)
	assert.Equal(t, KindUnknown, KindOf(foreign))
	assert.Equal(t, CodeInternal, CodeOf(foreign))
	assert.False(t, IsRetryable(foreign))
	assert.True(t, IsFatal(foreign))
	assert.False(t, IsFatal(nil))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		err  Error
		want bool
	}{
		{New(KindConfiguration).Build(), true},
		{New(KindValidation).Build(), true},
		{New(KindInternal).Build(), true},
		{New(KindAPI).Status(404).Build(), false},
		{New(KindTimeout).Build(), false},
		{New(KindBusiness).Build(), false},
		{New(KindNetwork).Build(), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsFatal(tc.err), tc.err.Error())
	}
}

func TestWrapAndResultOf(t *testing.T) {
	assert.Nil(t, Wrap(nil))

	own := New(KindBusiness).Build()
	assert.Same(t, own, Wrap(own).(*BusinessError))

	foreign := stdErrors.New("disk full")
	w := Wrap(foreign)
	assert.Equal(t, KindInternal, w.Kind())
	assert.True(t, stdErrors.Is(w, foreign))

	ok := ResultOf(42, nil)
	assert.True(t, ok.IsOk())
	assert.Equal(t, 42, ok.Unwrap())

	failed := ResultOf(0, fmt.Errorf("wrap: %w", own))
	require.True(t, failed.IsErr())
	assert.Equal(t, KindBusiness, failed.UnwrapErr().Kind())
}

type kindNamer struct{}

func (kindNamer) Network(*NetworkError) string                       { return "network" }
func (kindNamer) Authentication(*AuthenticationError) string         { return "authentication" }
func (kindNamer) API(e *APIError) string                             { return fmt.Sprintf("api %d", e.Status()) }
func (kindNamer) Validation(e *ValidationError) string               { return "validation " + e.Field() }
func (kindNamer) Configuration(*ConfigurationError) string           { return "configuration" }
func (kindNamer) Serialization(*SerializationError) string           { return "serialization" }
func (kindNamer) Business(*BusinessError) string                     { return "business" }
func (kindNamer) Timeout(*TimeoutError) string                       { return "timeout" }
func (kindNamer) RateLimit(*RateLimitError) string                   { return "rate_limit" }
func (kindNamer) ServiceUnavailable(*ServiceUnavailableError) string { return "service_unavailable" }
func (kindNamer) Internal(*InternalError) string                     { return "internal" }

func TestVisitDispatchesEveryKind(t *testing.T) {
	for _, e := range everyKind() {
		got := Visit[string](e, kindNamer{})
		switch e.Kind() {
		case KindAPI:
			assert.Equal(t, "api 500", got)
		case KindValidation:
			assert.Equal(t, "validation ", got)
		default:
			assert.Equal(t, e.Kind().String(), got)
		}
	}
	assert.Equal(t, "", Visit[string](nil, kindNamer{}))
}
