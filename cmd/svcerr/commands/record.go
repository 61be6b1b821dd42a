package commands

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/metrics"
	"git.home.luguber.info/inful/svcerr/internal/observability"
)

// RecordCmd implements the 'record' command.
type RecordCmd struct {
	Kind        string            `arg:"" help:"Error kind, e.g. network, rate_limit"`
	Code        string            `help:"Override the kind's default code"`
	Message     string            `short:"m" help:"Diagnostic message"`
	UserMessage string            `name:"user-message" help:"User-facing message override"`
	Source      string            `help:"Text of the underlying cause"`
	Field       string            `help:"Offending field (validation)"`
	Status      int               `help:"HTTP status (api)"`
	Endpoint    string            `help:"Endpoint (api)"`
	Duration    time.Duration     `help:"Elapsed time (timeout)"`
	Limit       int               `help:"Request limit (rate_limit)"`
	Window      time.Duration     `help:"Window before retrying (rate_limit)"`
	Service     string            `help:"Service name (service_unavailable)"`
	RetryAfter  time.Duration     `name:"retry-after" help:"Retry hint (service_unavailable)"`
	RequestID   string            `name:"request-id" help:"Correlation id; generated when empty"`
	Component   string            `help:"Component name"`
	With        map[string]string `help:"Extra context entries (key=value)"`
	Backtrace   bool              `help:"Capture a backtrace"`
	Strict      bool              `help:"Reject incomplete values instead of filling defaults"`
	Emit        bool              `help:"Also send the record to the configured sinks"`
}

func (r *RecordCmd) Run(g *Global) error {
	ctx, span := observability.GetGlobalTracer().StartOperationSpan(context.Background(), "cli", "record")
	if r.RequestID != "" {
		ctx = observability.WithRequestID(ctx, r.RequestID)
	}
	ctx, _ = observability.EnsureRequestID(ctx)

	e, err := r.build(ctx)
	observability.EndSpan(span, err)
	if err != nil {
		return err
	}

	rec := e.Record()
	enc := json.NewEncoder(g.out())
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	if !r.Emit {
		return nil
	}
	s, err := buildSink(g.Config.Sinks, g.Logger, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	return stdErrors.Join(s.Emit(ctx, rec), s.Close())
}

func (r *RecordCmd) build(ctx context.Context) (errors.Error, error) {
	kind, err := errors.ParseKind(r.Kind)
	if err != nil {
		return nil, errors.New(errors.KindValidation).Field("kind").Message(err.Error()).Build()
	}

	b := errors.New(kind).WithContext(ctx)
	if r.Code != "" {
		code, err := errors.ParseCode(r.Code)
		if err != nil {
			return nil, errors.New(errors.KindValidation).Field("code").Message(err.Error()).Build()
		}
		b.Code(code)
	}
	if r.Message != "" {
		b.Message(r.Message)
	}
	if r.UserMessage != "" {
		b.UserMessage(r.UserMessage)
	}
	if r.Source != "" {
		b.Source(stdErrors.New(r.Source))
	}
	if r.Field != "" {
		b.Field(r.Field)
	}
	if r.Status != 0 {
		b.Status(r.Status)
	}
	if r.Endpoint != "" {
		b.Endpoint(r.Endpoint)
	}
	if r.Duration != 0 {
		b.Duration(r.Duration)
	}
	if r.Limit != 0 {
		b.Limit(r.Limit)
	}
	if r.Window != 0 {
		b.Window(r.Window)
	}
	if r.Service != "" {
		b.Service(r.Service)
	}
	if r.RetryAfter != 0 {
		b.RetryAfter(r.RetryAfter)
	}
	if r.Component != "" {
		b.Component(strings.TrimSpace(r.Component))
	}
	if len(r.With) > 0 {
		b.WithFields(r.With)
	}
	if r.Backtrace {
		b.Backtrace()
	}

	if r.Strict {
		return b.BuildStrict()
	}
	return b.Build(), nil
}
