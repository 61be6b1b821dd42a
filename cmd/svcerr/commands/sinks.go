package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/svcerr/internal/config"
	"git.home.luguber.info/inful/svcerr/internal/metrics"
	"git.home.luguber.info/inful/svcerr/internal/recordstore"
	"git.home.luguber.info/inful/svcerr/internal/sink"
)

// buildSink assembles the sinks enabled in cfg. Network sinks are batched
// through a buffered sink when buffering is enabled.
func buildSink(cfg config.SinksConfig, logger *slog.Logger, recorder metrics.Recorder) (sink.Sink, error) {
	var sinks sink.Multi
	fail := func(err error) (sink.Sink, error) {
		_ = sinks.Close()
		return nil, err
	}

	if cfg.Log.Enabled {
		sinks = append(sinks, sink.Instrument("log", sink.NewLogSink(logger), recorder))
	}
	if cfg.Prometheus.Enabled {
		sinks = append(sinks, sink.Instrument("metrics", sink.NewMetricsSink(recorder), recorder))
	}
	if cfg.SQLite.Enabled {
		store, err := recordstore.NewSQLiteStore(cfg.SQLite.Path)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, sink.Instrument("sqlite", sink.NewStoreSink(store), recorder))
	}

	var remote sink.Multi
	if cfg.NATS.Enabled {
		s, err := sink.NewNATSSink(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return fail(err)
		}
		remote = append(remote, sink.Instrument("nats", s, recorder))
	}
	if cfg.Redis.Enabled {
		s, err := sink.NewRedisSink(cfg.Redis.URL, cfg.Redis.Stream, cfg.Redis.MaxLen)
		if err != nil {
			_ = remote.Close()
			return fail(err)
		}
		remote = append(remote, sink.Instrument("redis", s, recorder))
	}

	if len(remote) > 0 {
		if cfg.Buffer.Enabled {
			b, err := sink.NewBuffered(remote, cfg.Buffer.IntervalDuration(), cfg.Buffer.Size, recorder)
			if err != nil {
				_ = remote.Close()
				return fail(fmt.Errorf("failed to create buffered sink: %w", err))
			}
			sinks = append(sinks, b)
		} else {
			sinks = append(sinks, remote...)
		}
	}

	return sinks, nil
}
