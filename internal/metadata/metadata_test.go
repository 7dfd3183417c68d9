package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elilab/mediakit/internal/fsops"
)

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{name: "complete", rec: Record{ProjectName: "Lumen", ProjectCode: "LMN"}},
		{name: "missing code", rec: Record{ProjectName: "Lumen"}, wantErr: true},
		{name: "missing name", rec: Record{ProjectCode: "LMN"}, wantErr: true},
		{name: "whitespace name", rec: Record{ProjectName: "  ", ProjectCode: "LMN"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecordSetGet(t *testing.T) {
	var r Record
	require.NoError(t, r.Set("Client", "Nimbus Studios"))
	v, ok := r.Get("client")
	assert.True(t, ok)
	assert.Equal(t, "Nimbus Studios", v)

	assert.ErrorIs(t, r.Set("budget", "1"), ErrUnknownField)
	assert.Len(t, FieldNames(), 12)
}

func TestStoreSaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "new", "project")
	s := NewStore(fsops.NewRealFS(), "")
	rec := &Record{
		ProjectName: "Lumen",
		ProjectCode: "LMN",
		Client:      "Nimbus",
		KeyThemes:   "light, memory",
	}

	require.NoError(t, s.Save(dir, rec))

	data, err := os.ReadFile(filepath.Join(dir, DefaultFileName))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n    \"project_name\": \"Lumen\""))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "lead_artist", "base fields are always written")
	assert.NotContains(t, raw, "crew", "optional fields are omitted when empty")

	loaded, err := s.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, rec, loaded)
}

func TestStoreSave_RequiresNameAndCode(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(fsops.NewRealFS(), "")

	err := s.Save(dir, &Record{ProjectName: "Lumen"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoFileExists(t, s.Path(dir))
}

func TestStoreLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(fsops.NewRealFS(), "")

	_, err := s.Load(dir)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.WriteFile(s.Path(dir), []byte("{"), 0644))
	_, err = s.Load(dir)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestStoreInit(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(fsops.NewRealFS(), "meta.json")
	rec := &Record{ProjectName: "Lumen", ProjectCode: "LMN"}

	require.NoError(t, s.Init(dir, rec))
	assert.FileExists(t, filepath.Join(dir, "meta.json"))
	assert.ErrorIs(t, s.Init(dir, rec), fsops.ErrExists)
}
