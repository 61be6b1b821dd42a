package commands

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/svcerr/internal/config"
	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
)

// Global carries state shared by all subcommands once flags are parsed.
type Global struct {
	Logger *slog.Logger
	Config *config.Config
	Lang   language.Tag
	Out    io.Writer

	verbose bool
	errs    *errors.CLIErrorAdapter
}

// Errors returns the adapter that turns command failures into messages and exit codes.
func (g *Global) Errors() *errors.CLIErrorAdapter {
	if g.errs == nil {
		g.errs = errors.NewCLIErrorAdapter(g.verbose, g.Logger).WithLanguage(g.Lang)
	}
	return g.errs
}

func (g *Global) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"svcerr.yaml" env:"SVCERR_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging and detailed error output"`
	Lang    string           `help:"Language for user-facing messages (overrides config locale)"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Codes        CodesCmd        `cmd:"" help:"List error codes and their severities"`
	Classify     ClassifyCmd     `cmd:"" help:"Classify a transport failure and show the retry decision"`
	Record       RecordCmd       `cmd:"" help:"Build an error and print its observability record"`
	Emit         EmitCmd         `cmd:"" help:"Send JSON records to the configured sinks"`
	ServeMetrics ServeMetricsCmd `cmd:"" name:"serve-metrics" help:"Serve Prometheus metrics and accept records over HTTP"`
	History      HistoryCmd      `cmd:"" help:"Query the local record store"`
	Init         InitCmd         `cmd:"" help:"Write an example configuration file"`
}

// AfterApply loads configuration and sets up logging once flags are parsed.
func (c *CLI) AfterApply(g *Global) error {
	g.verbose = c.Verbose

	cfg, err := c.loadConfig()
	if err != nil {
		// Report with a plain logger; the configured one is unavailable.
		g.Logger = newLogger(os.Stderr, config.LoggingConfig{Level: config.LogLevelInfo, Format: config.LogFormatText}, c.Verbose)
		return err
	}
	g.Config = cfg

	g.Lang = cfg.Language()
	if c.Lang != "" {
		tag, err := language.Parse(c.Lang)
		if err != nil {
			return errors.New(errors.KindValidation).Field("lang").Message("invalid language tag " + c.Lang).Build()
		}
		g.Lang = tag
	}

	g.Logger = newLogger(os.Stderr, cfg.Logging, c.Verbose)
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig falls back to defaults when the configuration file is absent.
func (c *CLI) loadConfig() (*config.Config, error) {
	if _, err := os.Stat(c.Config); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(c.Config)
}

func newLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := lc.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}

	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}))
}
