package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default values for settings not provided by file or environment.
const (
	DefaultSnapshotFile = "folder_validation.json"
	DefaultMetadataFile = "project_metadata.json"
	DefaultQuality      = "medium"
	DefaultPngquant     = "pngquant"
	DefaultStudioPrefix = "eli_lab territory"
)

// Settings is the effective mediakit configuration.
type Settings struct {
	PngquantPath   string `mapstructure:"pngquant_path" json:"pngquantPath"`
	DefaultQuality string `mapstructure:"default_quality" json:"defaultQuality"`
	Workers        int    `mapstructure:"workers" json:"workers"`
	TemplatesDir   string `mapstructure:"templates_dir" json:"templatesDir"`
	TemplatesMap   string `mapstructure:"templates_map" json:"templatesMap,omitempty"`
	StudioPrefix   string `mapstructure:"studio_prefix" json:"studioPrefix"`
	SnapshotFile   string `mapstructure:"snapshot_file" json:"snapshotFile"`
	MetadataFile   string `mapstructure:"metadata_file" json:"metadataFile"`
	LogLevel       string `mapstructure:"log_level" json:"logLevel"`
	LogFormat      string `mapstructure:"log_format" json:"logFormat"`

	// ConfigFile is the config file that was read, empty if none.
	ConfigFile string `mapstructure:"-" json:"configFile,omitempty"`
}

// LoadSettings resolves settings in order of precedence:
//  1. MEDIAKIT_* environment variables (including ones set by .env files)
//  2. Config file (explicit path, else ~/.mediakit.yaml, ./.mediakit.yaml,
//     or <root>/config.yaml)
//  3. Defaults
//
// Command-line flags are applied on top by the CLI.
func LoadSettings(configFile string, paths *Paths) (*Settings, error) {
	LoadEnvFiles(".")

	v := viper.New()
	v.SetEnvPrefix("MEDIAKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("pngquant_path", DefaultPngquant)
	v.SetDefault("default_quality", DefaultQuality)
	v.SetDefault("workers", 4)
	v.SetDefault("templates_dir", paths.Templates)
	v.SetDefault("templates_map", "")
	v.SetDefault("studio_prefix", DefaultStudioPrefix)
	v.SetDefault("snapshot_file", DefaultSnapshotFile)
	v.SetDefault("metadata_file", DefaultMetadataFile)
	v.SetDefault("log_level", "")
	v.SetDefault("log_format", "auto")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".mediakit")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			if err := readRootConfig(v, paths); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.ConfigFile = v.ConfigFileUsed()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// readRootConfig falls back to <root>/config.yaml when no dotfile is found.
func readRootConfig(v *viper.Viper, paths *Paths) error {
	if _, err := os.Stat(paths.Config); err != nil {
		return nil
	}
	v.SetConfigFile(paths.Config)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", paths.Config, err)
	}
	return nil
}

// Validate checks settings that would otherwise fail deep inside a command.
func (s *Settings) Validate() error {
	if s.Workers < 1 {
		return fmt.Errorf("invalid workers %d: must be at least 1", s.Workers)
	}
	if s.SnapshotFile == "" || strings.ContainsAny(s.SnapshotFile, `/\`) {
		return fmt.Errorf("invalid snapshot_file %q: must be a plain file name", s.SnapshotFile)
	}
	if s.MetadataFile == "" || strings.ContainsAny(s.MetadataFile, `/\`) {
		return fmt.Errorf("invalid metadata_file %q: must be a plain file name", s.MetadataFile)
	}
	return nil
}

// LoadEnvFiles loads .env then .env.local from dir. Variables already
// present in the environment are never overridden.
func LoadEnvFiles(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		_ = godotenv.Load(filepath.Join(dir, name))
	}
}
