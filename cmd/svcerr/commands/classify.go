package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/observability"
	"git.home.luguber.info/inful/svcerr/internal/retry"
	"git.home.luguber.info/inful/svcerr/internal/sink"
)

// ClassifyCmd implements the 'classify' command.
type ClassifyCmd struct {
	HTTPStatus int    `name:"http-status" help:"HTTP status code returned by the service"`
	RetryAfter string `name:"retry-after" help:"Retry-After header value"`
	Endpoint   string `help:"Endpoint as 'METHOD /path'" default:"GET /"`
	Body       string `help:"Response body"`
	GRPCCode   string `name:"grpc-code" help:"gRPC status code name, e.g. UNAVAILABLE"`
	Transport  string `help:"Transport failure: timeout, canceled, refused or dns"`
	Message    string `help:"Message attached to the gRPC status"`
	Operation  string `help:"Operation name recorded on the error" default:"cli.classify"`
	Attempts   int    `help:"Number of retry attempts to plan" default:"5"`
}

type retryStep struct {
	Attempt int   `json:"attempt"`
	DelayMS int64 `json:"delay_ms"`
}

type classification struct {
	Record      errors.Record `json:"record"`
	UserMessage string        `json:"user_message"`
	HTTPStatus  int           `json:"http_status"`
	ExitCode    int           `json:"exit_code"`
	Fatal       bool          `json:"fatal"`
	Retries     []retryStep   `json:"retries"`
}

func (c *ClassifyCmd) Run(g *Global) error {
	ctx, span := observability.GetGlobalTracer().StartOperationSpan(context.Background(), "cli", "classify")
	ctx, requestID := observability.EnsureRequestID(ctx)

	e, err := c.classify(requestID)
	observability.EndSpan(span, err)
	if err != nil {
		return err
	}
	if e == nil {
		fmt.Fprintln(g.out(), "no error: the status reports success")
		return nil
	}

	policy, err := g.Config.Retry.Policy()
	if err != nil {
		return err
	}

	collector := observability.NewMetricsCollector()
	result := classification{
		Record:      e.Record(),
		UserMessage: errors.LocalizedUserMessage(e, g.Lang),
		HTTPStatus:  errors.NewHTTPErrorAdapter(g.Logger).StatusCodeFor(e),
		ExitCode:    g.Errors().ExitCodeFor(e),
		Fatal:       errors.IsFatal(e),
		Retries:     planRetries(collector, e, c.Attempts, policy),
	}

	observability.NewLogBuilder(ctx).Logger(g.Logger).
		Attrs(result.Record.Attrs()...).
		With("planned_retries", len(result.Retries)).
		Debug("Classified failure")

	enc := json.NewEncoder(g.out())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return errors.New(errors.KindSerialization).Message("failed to encode classification").Source(err).Build()
	}
	if g.verbose {
		fmt.Fprint(g.out(), collector.GetSnapshot().FormatMetrics())
	}
	return nil
}

// planRetries lists the retry decisions a loop would make for e.
func planRetries(collector *observability.MetricsCollector, e errors.Error, attempts int, fallback retry.Policy) []retryStep {
	steps := []retryStep{}
	for attempt := range attempts {
		delay, ok := sink.DecideRetry(collector, e, attempt, fallback)
		if !ok {
			break
		}
		steps = append(steps, retryStep{Attempt: attempt, DelayMS: delay.Milliseconds()})
	}
	return steps
}

func (c *ClassifyCmd) classify(requestID string) (errors.Error, error) {
	set := 0
	for _, given := range []bool{c.HTTPStatus != 0, c.GRPCCode != "", c.Transport != ""} {
		if given {
			set++
		}
	}
	if set != 1 {
		return nil, errors.New(errors.KindValidation).
			Field("source").
			Message("exactly one of --http-status, --grpc-code or --transport is required").
			Build()
	}

	switch {
	case c.HTTPStatus != 0:
		return c.fromHTTP(requestID)
	case c.GRPCCode != "":
		return c.fromGRPC()
	default:
		return c.fromTransport()
	}
}

func (c *ClassifyCmd) fromHTTP(requestID string) (errors.Error, error) {
	if c.HTTPStatus < 100 || c.HTTPStatus > 599 {
		return nil, errors.New(errors.KindValidation).
			Field("http-status").
			Message(fmt.Sprintf("%d is not an HTTP status code", c.HTTPStatus)).
			Build()
	}
	if c.HTTPStatus < 400 {
		return nil, nil
	}
	if c.Body != "" {
		return errors.FromHTTPStatus(c.HTTPStatus, c.Endpoint, []byte(c.Body)), nil
	}

	method, path, _ := strings.Cut(c.Endpoint, " ")
	u, err := url.Parse(strings.TrimSpace(path))
	if err != nil {
		return nil, errors.New(errors.KindValidation).Field("endpoint").Message("invalid endpoint path").Build()
	}
	header := http.Header{}
	header.Set("X-Request-Id", requestID)
	if c.RetryAfter != "" {
		header.Set("Retry-After", c.RetryAfter)
	}

	return errors.FromHTTPResponse(&http.Response{
		StatusCode: c.HTTPStatus,
		Header:     header,
		Request:    &http.Request{Method: method, URL: u},
	}), nil
}

func (c *ClassifyCmd) fromGRPC() (errors.Error, error) {
	var code codes.Code
	name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(c.GRPCCode), "-", "_"))
	if err := code.UnmarshalJSON([]byte(strconv.Quote(name))); err != nil {
		return nil, errors.New(errors.KindValidation).
			Field("grpc-code").
			Message(fmt.Sprintf("unknown gRPC code %q", c.GRPCCode)).
			Build()
	}
	return errors.FromGRPC(status.Error(code, c.Message)), nil
}

func (c *ClassifyCmd) fromTransport() (errors.Error, error) {
	var cause error
	switch strings.ToLower(c.Transport) {
	case "timeout":
		cause = context.DeadlineExceeded
	case "canceled", "cancelled":
		cause = context.Canceled
	case "refused":
		cause = &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	case "dns":
		host := c.Message
		if host == "" {
			host = "unknown"
		}
		cause = &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	default:
		return nil, errors.New(errors.KindValidation).
			Field("transport").
			Message(fmt.Sprintf("unknown transport failure %q", c.Transport)).
			Build()
	}
	return errors.FromTransport(cause, c.Operation), nil
}
