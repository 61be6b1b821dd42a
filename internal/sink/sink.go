package sink

import (
	"context"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/metrics"
	"git.home.luguber.info/inful/svcerr/internal/observability"
)

// Sink accepts error records for delivery.
type Sink interface {
	Emit(ctx context.Context, rec errors.Record) error
	Close() error
}

// Stamp sets the record timestamp to the current time unless already set.
func Stamp(rec errors.Record) errors.Record {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	return rec
}

// EmitError records err through s. A nil err is a no-op.
func EmitError(ctx context.Context, s Sink, err error) error {
	e := errors.Wrap(err)
	if e == nil {
		return nil
	}
	return s.Emit(ctx, e.Record())
}

type instrumented struct {
	name     string
	next     Sink
	recorder metrics.Recorder
}

// Instrument wraps s so every delivery opens a sink span and reports its
// outcome and duration to recorder.
func Instrument(name string, s Sink, recorder metrics.Recorder) Sink {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &instrumented{name: name, next: s, recorder: recorder}
}

func (i *instrumented) Emit(ctx context.Context, rec errors.Record) error {
	ctx, span := observability.GetGlobalTracer().StartSinkSpan(ctx, i.name)
	start := time.Now()

	err := i.next.Emit(ctx, rec)

	i.recorder.ObserveSinkDuration(i.name, time.Since(start))
	if err != nil {
		i.recorder.IncSinkResult(i.name, metrics.ResultFailed)
	} else {
		i.recorder.IncSinkResult(i.name, metrics.ResultSuccess)
	}
	observability.EndSpan(span, err)
	return err
}

func (i *instrumented) Close() error { return i.next.Close() }
