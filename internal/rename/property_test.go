package rename

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func statFile(t *testing.T, path string) File {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return File{Path: path, Rel: filepath.Base(path), Name: filepath.Base(path), Info: info}
}

func TestAddProperty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hero.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0644))
	mtime := time.Date(2023, 11, 2, 8, 30, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	f := statFile(t, path)

	tests := []struct {
		name string
		tr   AddProperty
		want string
	}{
		{name: "size prefix", tr: AddProperty{Property: PropSize, Position: Prefix}, want: "16_hero.png"},
		{name: "size suffix", tr: AddProperty{Property: PropSize, Position: Suffix}, want: "hero.png_16"},
		{name: "name", tr: AddProperty{Property: PropName, Position: Prefix}, want: "hero.png_hero.png"},
		{name: "modified", tr: AddProperty{Property: PropModified, Position: Prefix}, want: "2023-11-02_08-30-00_hero.png"},
		{name: "file type", tr: AddProperty{Property: PropFileType, Position: Prefix}, want: "image-png_hero.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tr.NewName(f, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddProperty_Created(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	got, err := AddProperty{Property: PropCreated, Position: Prefix}.NewName(statFile(t, path), 0)
	require.NoError(t, err)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}_a\.txt$`, got)
}

func TestAddProperty_DateTakenWithoutExif(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("no exif here"), 0644))

	_, err := AddProperty{Property: PropDateTaken, Position: Prefix}.NewName(statFile(t, path), 0)
	assert.Error(t, err)
}

func TestParseProperty(t *testing.T) {
	p, err := ParseProperty("Taken")
	require.NoError(t, err)
	assert.Equal(t, PropDateTaken, p)

	_, err = ParseProperty("colour")
	assert.Error(t, err)

	pos, err := ParsePosition("SUFFIX")
	require.NoError(t, err)
	assert.Equal(t, Suffix, pos)
}
