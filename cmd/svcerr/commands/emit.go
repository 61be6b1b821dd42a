package commands

import (
	"bufio"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/logfields"
	"git.home.luguber.info/inful/svcerr/internal/observability"
	"git.home.luguber.info/inful/svcerr/internal/sink"
)

// EmitCmd implements the 'emit' command.
type EmitCmd struct {
	File string `arg:"" optional:"" help:"JSON Lines file of records ('-' or empty reads stdin)" type:"path"`
}

func (e *EmitCmd) Run(g *Global) (err error) {
	ctx, span := observability.GetGlobalTracer().StartOperationSpan(context.Background(), "cli", "emit")
	defer func() { observability.EndSpan(span, err) }()

	in := io.Reader(os.Stdin)
	if e.File != "" && e.File != "-" {
		f, err := os.Open(e.File)
		if err != nil {
			return errors.New(errors.KindValidation).Field("file").Message(err.Error()).Build()
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	collector := observability.NewMetricsCollector()
	s, err := buildSink(g.Config.Sinks, g.Logger, collector)
	if err != nil {
		return err
	}

	sent, emitErr := emitRecords(ctx, s, in)
	closeErr := s.Close()

	observability.NewLogBuilder(ctx).Logger(g.Logger).
		Attrs(logfields.Count(sent)).
		Info("Emitted records")
	fmt.Fprintf(g.out(), "emitted %d record(s)\n", sent)
	if g.verbose {
		fmt.Fprint(g.out(), collector.GetSnapshot().FormatMetrics())
	}
	return stdErrors.Join(emitErr, closeErr)
}

// emitRecords decodes one record per line and sends it to s. Blank lines
// are skipped. Decoding stops at the first malformed line; delivery
// failures are collected and do not stop the stream.
func emitRecords(ctx context.Context, s sink.Sink, in io.Reader) (int, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		sent int
		errs []error
		line int
	)
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var rec errors.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			errs = append(errs, errors.New(errors.KindSerialization).
				Message("failed to decode record").
				Source(err).
				With("line", strconv.Itoa(line)).
				Build())
			break
		}
		if err := s.Emit(ctx, rec); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("failed to read records: %w", err))
	}
	return sent, stdErrors.Join(errs...)
}
