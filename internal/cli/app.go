package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/elilab/mediakit/internal/clock"
	"github.com/elilab/mediakit/internal/config"
	"github.com/elilab/mediakit/internal/fsops"
	"github.com/elilab/mediakit/internal/hash"
	"github.com/elilab/mediakit/internal/logging"
	"github.com/elilab/mediakit/internal/metadata"
	"github.com/elilab/mediakit/internal/texture"
	"github.com/elilab/mediakit/internal/validation"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	json       bool
	configFile string
	logLevel   string
	verbose    bool
	quiet      bool
	noColor    bool
}

// app carries everything a command needs. setup fills in settings and the
// logger before any RunE executes.
type app struct {
	opts globalOptions

	out      io.Writer
	paths    *config.Paths
	settings *config.Settings
	logger   zerolog.Logger

	fs     fsops.FS
	clock  clock.Clock
	runner texture.Runner
}

func newApp() *app {
	return &app{
		out:    os.Stdout,
		logger: logging.Nop(),
		fs:     fsops.NewRealFS(),
		clock:  &clock.RealClock{},
		runner: texture.ExecRunner{},
	}
}

// setup resolves paths, settings and the logger from flags and environment.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.opts.noColor || a.opts.json {
		color.NoColor = true
	}

	paths, err := config.DefaultPaths()
	if err != nil {
		return fmt.Errorf("failed to get config paths: %w", err)
	}
	settings, err := config.LoadSettings(a.opts.configFile, paths)
	if err != nil {
		return err
	}
	a.paths = paths
	a.settings = settings

	envLevel := os.Getenv("LOG_LEVEL")
	if envLevel == "" {
		envLevel = settings.LogLevel
	}
	a.logger = logging.New(logging.Config{
		Level: logging.ResolveLevel(logging.Options{
			LogLevel: a.opts.logLevel,
			Verbose:  a.opts.verbose,
			Quiet:    a.opts.quiet,
			EnvLevel: envLevel,
		}),
		Format:  settings.LogFormat,
		Output:  os.Stderr,
		NoColor: a.opts.noColor,
	})
	a.logger.Debug().
		Str("command", cmd.CommandPath()).
		Str("root", paths.Root).
		Str("config", settings.ConfigFile).
		Msg("settings loaded")
	return nil
}

func (a *app) validator(withHash bool) *validation.Validator {
	var h hash.Hasher
	if withHash {
		h = hash.NewSHA256Hasher()
	}
	return validation.New(a.fs, h, a.logger, validation.Options{
		SnapshotFile: a.settings.SnapshotFile,
		MetadataFile: a.settings.MetadataFile,
		Hash:         withHash,
	})
}

func (a *app) metadataStore() *metadata.Store {
	return metadata.NewStore(a.fs, a.settings.MetadataFile)
}
