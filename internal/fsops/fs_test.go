package fsops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealFS_ValidateRelPath(t *testing.T) {
	fs := &RealFS{}

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{name: "valid relative path", path: "shots/sh010/plate.exr"},
		{name: "valid single file", path: "file.txt"},
		{name: "empty path", path: "", wantError: true},
		{name: "current directory", path: ".", wantError: true},
		{name: "absolute path", path: "/etc/hosts", wantError: true},
		{name: "parent directory traversal", path: "../etc/hosts", wantError: true},
		{name: "traversal in middle", path: "foo/../../../etc/hosts", wantError: true},
		{name: "dotdot prefix in a name", path: "..hidden/file.txt"},
		{name: "path with dot prefix", path: ".hidden/file.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fs.ValidateRelPath(tt.path)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRealFS_ValidateName(t *testing.T) {
	fs := &RealFS{}

	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{name: "simple", input: "hero"},
		{name: "with spaces", input: "Forest Clearing"},
		{name: "with underscore", input: "prop_table_01"},
		{name: "empty", input: "", wantError: true},
		{name: "whitespace only", input: "   ", wantError: true},
		{name: "current directory", input: ".", wantError: true},
		{name: "parent directory", input: "..", wantError: true},
		{name: "slash", input: "a/b", wantError: true},
		{name: "backslash", input: `a\b`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fs.ValidateName(tt.input)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRealFS_AtomicWrite(t *testing.T) {
	dir := t.TempDir()
	fs := NewRealFS()
	path := filepath.Join(dir, "nested", "record.json")

	require.NoError(t, fs.AtomicWrite(path, []byte(`{"a":1}`), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestRealFS_RenameRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	fs := NewRealFS()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0644))

	err := fs.Rename(a, b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExists))

	data, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestRealFS_Rename(t *testing.T) {
	dir := t.TempDir()
	fs := NewRealFS()
	a := filepath.Join(dir, "a.txt")
	c := filepath.Join(dir, "c.txt")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0644))

	require.NoError(t, fs.Rename(a, c))

	exists, err := fs.Exists(a)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = fs.Exists(c)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRealFS_RenameOntoItself(t *testing.T) {
	dir := t.TempDir()
	fs := NewRealFS()
	a := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0644))

	require.NoError(t, fs.Rename(a, a))

	data, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestRealFS_CopyPreservesModTime(t *testing.T) {
	dir := t.TempDir()
	fs := NewRealFS()
	src := filepath.Join(dir, "Asset.blend")
	dst := filepath.Join(dir, "out", "chair.blend")
	require.NoError(t, os.WriteFile(src, []byte("blend"), 0644))
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	require.NoError(t, fs.Copy(src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "blend", string(data))
}

func TestRealFS_CopyDir(t *testing.T) {
	dir := t.TempDir()
	fs := NewRealFS()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "f.txt"), []byte("x"), 0644))

	dst := filepath.Join(dir, "dst")
	require.NoError(t, fs.Copy(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "sub", "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
