package sink

import (
	"context"
	stdErrors "errors"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
)

// Multi delivers each record to every sink. A failing sink does not stop
// delivery to the others; all failures are joined.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, rec errors.Record) error {
	rec = Stamp(rec)
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return stdErrors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stdErrors.Join(errs...)
}
