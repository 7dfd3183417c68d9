// Package config manages mediakit configuration and filesystem paths.
//
// Paths locates the mediakit home directory (default ~/.mediakit) holding
// the config file and the Blender template library used for provisioning.
// Settings layers defaults, an optional YAML config file, .env files and
// MEDIAKIT_* environment variables through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the filesystem paths used by mediakit.
type Paths struct {
	// Root is the base directory for all mediakit data (default: ~/.mediakit)
	Root string

	// Templates is the default template library for provisioning
	Templates string

	// Config is the path to the global config file
	Config string
}

// DefaultPaths returns the default paths for mediakit.
// Paths can be overridden with environment variables:
// - MEDIAKIT_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("MEDIAKIT_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".mediakit")
	}

	return &Paths{
		Root:      root,
		Templates: filepath.Join(root, "templates"),
		Config:    filepath.Join(root, "config.yaml"),
	}, nil
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Root, p.Templates} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
