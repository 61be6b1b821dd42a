package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/logfields"
	"git.home.luguber.info/inful/svcerr/internal/observability"
	"git.home.luguber.info/inful/svcerr/internal/recordstore"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Database  string        `help:"SQLite database path (overrides config)"`
	RequestID string        `name:"request-id" help:"Show records for one request"`
	Since     time.Duration `help:"Look back this far" default:"24h"`
	Counts    bool          `help:"Show counts per code instead of records"`
	Prune     bool          `help:"Delete records older than the configured retention"`
}

func (h *HistoryCmd) Run(g *Global) error {
	path := firstNonEmpty(h.Database, g.Config.Sinks.SQLite.Path)
	store, err := recordstore.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, span := observability.GetGlobalTracer().StartOperationSpan(context.Background(), "cli", "history")
	err = h.run(ctx, g, store, time.Now())
	observability.EndSpan(span, err)
	return err
}

func (h *HistoryCmd) run(ctx context.Context, g *Global, store recordstore.Store, now time.Time) error {
	switch {
	case h.Prune:
		retention := g.Config.Sinks.SQLite.RetentionDuration()
		if retention <= 0 {
			return errors.New(errors.KindConfiguration).
				Message("sinks.sqlite.retention must be set to prune").
				With("field", "sinks.sqlite.retention").
				Build()
		}
		removed, err := store.Prune(ctx, now.Add(-retention))
		if err != nil {
			return err
		}
		observability.NewLogBuilder(ctx).Logger(g.Logger).Attrs(logfields.Count(int(removed))).Info("Pruned records")
		fmt.Fprintf(g.out(), "pruned %d record(s)\n", removed)
		return nil

	case h.Counts:
		counts, err := store.CountByCode(ctx, now.Add(-h.Since))
		if err != nil {
			return err
		}
		return writeCounts(g, counts)

	case h.RequestID != "":
		entries, err := store.GetByRequestID(ctx, h.RequestID)
		if err != nil {
			return err
		}
		return writeEntries(g, entries)

	default:
		entries, err := store.GetRange(ctx, now.Add(-h.Since), now)
		if err != nil {
			return err
		}
		return writeEntries(g, entries)
	}
}

func writeCounts(g *Global, counts map[errors.Code]int) error {
	codes := make([]errors.Code, 0, len(counts))
	for c := range counts {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tSEVERITY\tCOUNT")
	for _, c := range codes {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c, c.Severity(), counts[c])
	}
	return tw.Flush()
}

func writeEntries(g *Global, entries []recordstore.Entry) error {
	enc := json.NewEncoder(g.out())
	for _, e := range entries {
		if err := enc.Encode(struct {
			ID string `json:"id"`
			errors.Record
		}{e.ID, e.Record}); err != nil {
			return fmt.Errorf("failed to encode record %s: %w", e.ID, err)
		}
	}
	return nil
}
