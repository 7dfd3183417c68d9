package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/elilab/mediakit/internal/fsops"
)

func (a *app) newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show and initialise mediakit configuration",
	}
	configCmd.AddCommand(a.newConfigShowCmd(), a.newConfigInitCmd())
	return configCmd
}

func (a *app) newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			if a.opts.json {
				return a.outputJSON(s)
			}
			PrintSection("Configuration")
			configFile := s.ConfigFile
			if configFile == "" {
				configFile = "(none, using defaults)"
			}
			PrintLabelValue("Config file", configFile)
			PrintLabelValue("Home", a.paths.Root)
			fmt.Println()
			PrintLabelValue("pngquant_path", s.PngquantPath)
			PrintLabelValue("default_quality", s.DefaultQuality)
			PrintLabelValue("workers", fmt.Sprint(s.Workers))
			PrintLabelValue("templates_dir", s.TemplatesDir)
			PrintLabelValue("templates_map", s.TemplatesMap)
			PrintLabelValue("studio_prefix", s.StudioPrefix)
			PrintLabelValue("snapshot_file", s.SnapshotFile)
			PrintLabelValue("metadata_file", s.MetadataFile)
			PrintLabelValue("log_level", s.LogLevel)
			PrintLabelValue("log_format", s.LogFormat)
			return nil
		},
	}
}

func (a *app) newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the mediakit home with a config file and template folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.paths.EnsureDirectories(); err != nil {
				return err
			}
			exists, err := a.fs.Exists(a.paths.Config)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("%s: %w (use --force to overwrite)", a.paths.Config, fsops.ErrExists)
			}

			s := a.settings
			data, err := yaml.Marshal(map[string]interface{}{
				"pngquant_path":   s.PngquantPath,
				"default_quality": s.DefaultQuality,
				"workers":         s.Workers,
				"templates_dir":   s.TemplatesDir,
				"studio_prefix":   s.StudioPrefix,
				"snapshot_file":   s.SnapshotFile,
				"metadata_file":   s.MetadataFile,
				"log_format":      s.LogFormat,
			})
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			if err := a.fs.AtomicWrite(a.paths.Config, data, 0644); err != nil {
				return err
			}

			if a.opts.json {
				return a.outputJSON(map[string]string{"config": a.paths.Config, "templates": a.paths.Templates})
			}
			PrintSuccess("Wrote " + a.paths.Config)
			PrintInfo("Put Asset.blend, Character.blend and Location.blend in " + a.paths.Templates)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
