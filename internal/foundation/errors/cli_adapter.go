package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/text/language"
)

// Process exit codes used by the CLI adapter.
const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitAuth          = 5
	ExitConfig        = 7
	ExitExternal      = 8
	ExitInternal      = 10
	ExitBusiness      = 11
	ExitTransient     = 12
	ExitSerialization = 13
)

// exitCodes maps every kind to a process exit code.
type exitCodes struct{}

func (exitCodes) Network(*NetworkError) int                       { return ExitExternal }
func (exitCodes) Authentication(*AuthenticationError) int         { return ExitAuth }
func (exitCodes) API(*APIError) int                               { return ExitExternal }
func (exitCodes) Validation(*ValidationError) int                 { return ExitUsage }
func (exitCodes) Configuration(*ConfigurationError) int           { return ExitConfig }
func (exitCodes) Serialization(*SerializationError) int           { return ExitSerialization }
func (exitCodes) Business(*BusinessError) int                     { return ExitBusiness }
func (exitCodes) Timeout(*TimeoutError) int                       { return ExitTransient }
func (exitCodes) RateLimit(*RateLimitError) int                   { return ExitTransient }
func (exitCodes) ServiceUnavailable(*ServiceUnavailableError) int { return ExitTransient }
func (exitCodes) Internal(*InternalError) int                     { return ExitInternal }

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	lang    language.Tag
	out     io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		lang:    language.English,
		out:     os.Stderr,
		exit:    os.Exit,
	}
}

// WithLanguage selects the language of user-facing messages.
func (a *CLIErrorAdapter) WithLanguage(tag language.Tag) *CLIErrorAdapter {
	a.lang = tag
	return a
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	if e, ok := As(err); ok {
		return Visit[int](e, exitCodes{})
	}
	return ExitGeneral
}

// FormatError formats an error for display. Non-verbose output only shows the
// localized user message and the code.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	e, ok := As(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return e.Error()
	}
	return fmt.Sprintf("Error: %s (%s)", LocalizedUserMessage(e, a.lang), e.Code())
}

// HandleError logs err, prints it and exits with the matching code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if a.shouldLog(err) {
		a.logError(err)
	}
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	if e, ok := As(err); ok {
		return e.Severity().AtLeast(SeverityHigh)
	}
	return true
}

func (a *CLIErrorAdapter) logError(err error) {
	if e, ok := As(err); ok {
		a.logger.LogAttrs(context.Background(), slogLevelFor(e.Severity()), e.Message(), e.Record().Attrs()...)
		return
	}
	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFor maps severity onto a log level.
func slogLevelFor(s Severity) slog.Level {
	switch s {
	case SeverityLow:
		return slog.LevelInfo
	case SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
