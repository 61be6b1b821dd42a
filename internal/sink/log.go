package sink

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
)

// LogSink writes records to a structured logger. The level follows the
// record severity.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink writing to logger, or slog.Default when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, rec errors.Record) error {
	rec = Stamp(rec)
	s.logger.LogAttrs(ctx, levelFor(rec.Severity), rec.Message, rec.Attrs()...)
	return nil
}

func (s *LogSink) Close() error { return nil }

func levelFor(sev errors.Severity) slog.Level {
	switch sev {
	case errors.SeverityLow:
		return slog.LevelInfo
	case errors.SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
