// Package logging builds the zerolog logger shared by all mediakit commands.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string

	// Format is json, console, or auto (console on a terminal).
	Format string

	// Output defaults to stderr.
	Output io.Writer

	NoColor bool
}

// Options carries the flag and environment inputs that decide the level.
type Options struct {
	LogLevel string
	Verbose  bool
	Quiet    bool
	EnvLevel string
}

// ResolveLevel picks the log level. Precedence, highest first:
//  1. --log-level
//  2. -v/--verbose (debug)
//  3. -q/--quiet (warn)
//  4. LOG_LEVEL / MEDIAKIT_LOG_LEVEL
//  5. info
func ResolveLevel(o Options) string {
	if o.LogLevel != "" {
		return validLevel(o.LogLevel)
	}
	if o.Verbose && o.Quiet {
		return "warn"
	}
	if o.Verbose {
		return "debug"
	}
	if o.Quiet {
		return "warn"
	}
	if o.EnvLevel != "" {
		return validLevel(o.EnvLevel)
	}
	return "info"
}

func validLevel(level string) string {
	switch strings.ToLower(level) {
	case "trace", "debug", "info", "warn", "error":
		return strings.ToLower(level)
	case "warning":
		return "warn"
	default:
		return "info"
	}
}

// New creates a logger from cfg.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(validLevel(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var w io.Writer = out
	if useConsole(cfg.Format, out) {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.NoColor || os.Getenv("NO_COLOR") != "",
		}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

func useConsole(format string, out io.Writer) bool {
	switch strings.ToLower(format) {
	case "console", "pretty":
		return true
	case "json":
		return false
	}
	f, ok := out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// Nop returns a disabled logger for tests and library callers that do not log.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
