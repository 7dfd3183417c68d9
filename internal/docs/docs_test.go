package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elilab/mediakit/internal/fsops"
	"github.com/elilab/mediakit/internal/metadata"
)

func TestRender(t *testing.T) {
	rec, err := Merge(metadata.Record{
		ProjectName:        "Lumen",
		ProjectCode:        "LMN",
		Client:             "Nimbus",
		PipelineVersion:    "2.1",
		LeadArtist:         "R. Okafor",
		ProjectDescription: "A lighthouse keeper's last night.",
		KeyThemes:          "light, memory,, solitude ",
		Crew:               "Ana - Layout\n\nBo - Lighting\n",
	}, Overrides{Status: "pre-production", License: "Apache License 2.0"})
	require.NoError(t, err)

	doc, err := Render(rec)
	require.NoError(t, err)

	assert.Contains(t, doc, "# Lumen\n")
	assert.Contains(t, doc, "badge/status-Pre-Production-yellow")
	assert.Contains(t, doc, "badge/license-Apache%20License%202.0-blue.svg")
	assert.Contains(t, doc, "## Synopsis\n\nA lighthouse keeper's last night.\n")
	assert.Contains(t, doc, "## Project Code:\n\nLMN\n")
	assert.Contains(t, doc, "## Key Themes\n\n* light\n* memory\n* solitude\n")
	assert.Contains(t, doc, "## Crew\n\n* **Ana - Layout**\n* **Bo - Lighting**\n")
}

func TestMerge_Defaults(t *testing.T) {
	rec, err := Merge(metadata.Record{}, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "[Project Name Placeholder]", rec.ProjectName)
	assert.Equal(t, "In Development", rec.ProjectStatus)
	assert.Equal(t, "MIT", rec.License)
}

func TestMerge_InvalidChoice(t *testing.T) {
	_, err := Merge(metadata.Record{}, Overrides{Status: "Shipped"})
	assert.ErrorIs(t, err, ErrInvalidChoice)

	_, err = Merge(metadata.Record{}, Overrides{License: "BSD"})
	assert.ErrorIs(t, err, ErrInvalidChoice)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	path, doc, err := Generate(fsops.NewRealFS(), dir, metadata.Record{ProjectName: "Lumen"}, Overrides{Synopsis: "Override"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))
	assert.Contains(t, doc, "## Synopsis\n\nOverride\n")
}
