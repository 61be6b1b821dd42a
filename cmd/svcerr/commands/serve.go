package commands

import (
	"context"
	stdErrors "errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/svcerr/internal/metrics"
	"git.home.luguber.info/inful/svcerr/internal/server/httpserver"
)

const shutdownTimeout = 10 * time.Second

// ServeMetricsCmd implements the 'serve-metrics' command.
type ServeMetricsCmd struct {
	Addr string `help:"Listen address (overrides config)"`
	Path string `help:"Metrics path (overrides config)"`
}

func (s *ServeMetricsCmd) Run(g *Global) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.serve(ctx, g)
}

func (s *ServeMetricsCmd) serve(ctx context.Context, g *Global) error {
	prometheusCfg := g.Config.Sinks.Prometheus
	addr := firstNonEmpty(s.Addr, prometheusCfg.Addr)
	path := firstNonEmpty(s.Path, prometheusCfg.Path)

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	sinksCfg := g.Config.Sinks
	// Ingested records always reach the scrape endpoint.
	sinksCfg.Prometheus.Enabled = true
	out, err := buildSink(sinksCfg, g.Logger, recorder)
	if err != nil {
		return err
	}

	srv := httpserver.New(httpserver.Options{
		Addr:        addr,
		MetricsPath: path,
		Metrics:     metrics.HTTPHandler(reg),
		Logger:      g.Logger,
	}, out)
	if err := srv.Start(ctx); err != nil {
		return stdErrors.Join(err, out.Close())
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return stdErrors.Join(srv.Stop(shutdownCtx), out.Close())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
