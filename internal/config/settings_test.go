package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPaths(t *testing.T) *Paths {
	t.Helper()
	root := t.TempDir()
	return &Paths{
		Root:      root,
		Templates: filepath.Join(root, "templates"),
		Config:    filepath.Join(root, "config.yaml"),
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	paths := testPaths(t)

	s, err := LoadSettings("", paths)
	require.NoError(t, err)

	assert.Equal(t, DefaultPngquant, s.PngquantPath)
	assert.Equal(t, DefaultQuality, s.DefaultQuality)
	assert.Equal(t, 4, s.Workers)
	assert.Equal(t, paths.Templates, s.TemplatesDir)
	assert.Equal(t, DefaultSnapshotFile, s.SnapshotFile)
	assert.Equal(t, DefaultMetadataFile, s.MetadataFile)
	assert.Empty(t, s.ConfigFile)
}

func TestLoadSettings_ConfigFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	paths := testPaths(t)

	cfg := filepath.Join(t.TempDir(), "mediakit.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("workers: 2\ndefault_quality: high\npngquant_path: /opt/bin/pngquant\n"), 0644))
	t.Setenv("MEDIAKIT_WORKERS", "8")

	s, err := LoadSettings(cfg, paths)
	require.NoError(t, err)

	assert.Equal(t, 8, s.Workers, "environment wins over file")
	assert.Equal(t, "high", s.DefaultQuality)
	assert.Equal(t, "/opt/bin/pngquant", s.PngquantPath)
	assert.Equal(t, cfg, s.ConfigFile)
}

func TestLoadSettings_RootConfigFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	paths := testPaths(t)
	require.NoError(t, os.WriteFile(paths.Config, []byte("studio_prefix: acme\n"), 0644))

	s, err := LoadSettings("", paths)
	require.NoError(t, err)
	assert.Equal(t, "acme", s.StudioPrefix)
	assert.Equal(t, paths.Config, s.ConfigFile)
}

func TestLoadSettings_Invalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	paths := testPaths(t)

	t.Setenv("MEDIAKIT_WORKERS", "0")
	_, err := LoadSettings("", paths)
	assert.Error(t, err)
}

func TestLoadSettings_MissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	paths := testPaths(t)

	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"), paths)
	assert.Error(t, err)
}

func TestLoadSettings_DotEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MEDIAKIT_SNAPSHOT_FILE=snap.json\n"), 0644))
	t.Cleanup(func() { _ = os.Unsetenv("MEDIAKIT_SNAPSHOT_FILE") })

	s, err := LoadSettings("", testPaths(t))
	require.NoError(t, err)
	assert.Equal(t, "snap.json", s.SnapshotFile)
}
