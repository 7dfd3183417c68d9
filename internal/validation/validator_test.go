package validation

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elilab/mediakit/internal/fsops"
	"github.com/elilab/mediakit/internal/hash"
	"github.com/elilab/mediakit/internal/logging"
)

func newTestValidator(opts Options) *Validator {
	return New(fsops.NewRealFS(), hash.NewSHA256Hasher(), logging.Nop(), opts)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func statusOf(t *testing.T, r *Result, path string) Status {
	t.Helper()
	for _, f := range r.Files {
		if f.Path == path {
			return f.Status
		}
	}
	t.Fatalf("path %q not in result", path)
	return ""
}

func TestChipThenCompare_DeletedAndNew(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	v := newTestValidator(Options{})

	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "b.txt"), "b")

	snap, err := v.Chip(ctx, dir)
	require.NoError(t, err)
	assert.Len(t, snap.Files, 2)
	assert.Equal(t, SchemaVersion, snap.Version)

	require.NoError(t, os.Remove(filepath.Join(dir, "b.txt")))
	writeFile(t, filepath.Join(dir, "c.txt"), "c")

	result, err := v.Compare(ctx, dir)
	require.NoError(t, err)
	assert.True(t, result.SnapshotFound)

	assert.Equal(t, StatusValid, statusOf(t, result, "a.txt"))
	assert.Equal(t, StatusDeleted, statusOf(t, result, "b.txt"))
	assert.Equal(t, StatusNew, statusOf(t, result, "c.txt"))
	assert.Len(t, result.Files, 3)
	assert.Equal(t, 1, result.Counts[StatusValid])
	assert.Equal(t, 1, result.Counts[StatusDeleted])
	assert.Equal(t, 1, result.Counts[StatusNew])
	assert.False(t, result.Clean())

	paths := []string{result.Files[0].Path, result.Files[1].Path, result.Files[2].Path}
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, paths)
}

func TestCompare_Modified(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	v := newTestValidator(Options{})

	path := filepath.Join(dir, "shots", "sh010.exr")
	writeFile(t, path, "v1")
	_, err := v.Chip(ctx, dir)
	require.NoError(t, err)

	writeFile(t, path, "version two")

	result, err := v.Compare(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, StatusModified, statusOf(t, result, "shots/sh010.exr"))
}

func TestCompare_ModifiedByMtimeOnly(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	v := newTestValidator(Options{})

	path := filepath.Join(dir, "plate.png")
	writeFile(t, path, "same")
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, old, old))
	_, err := v.Chip(ctx, dir)
	require.NoError(t, err)

	newer := old.Add(time.Hour)
	require.NoError(t, os.Chtimes(path, newer, newer))

	result, err := v.Compare(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, StatusModified, statusOf(t, result, "plate.png"))
}

func TestCompare_HashDetectsRestoredMtime(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	v := newTestValidator(Options{Hash: true})

	path := filepath.Join(dir, "rig.blend")
	writeFile(t, path, "aaaa")
	mtime := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	snap, err := v.Chip(ctx, dir)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Files["rig.blend"].SHA256)

	writeFile(t, path, "bbbb")
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	result, err := v.Compare(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, StatusModified, statusOf(t, result, "rig.blend"))

	plain := newTestValidator(Options{})
	result, err = plain.Compare(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, StatusValid, statusOf(t, result, "rig.blend"))
}

func TestCompare_DigestChangeWithoutFileChange(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	path := filepath.Join(dir, "cache.abc")
	writeFile(t, path, "alembic")

	hasher := hash.NewFakeHasher()
	hasher.SetHash(path, "one")
	v := New(fsops.NewRealFS(), hasher, logging.Nop(), Options{Hash: true})
	snap, err := v.Chip(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "one", snap.Files["cache.abc"].SHA256)

	hasher.SetHash(path, "two")
	result, err := v.Compare(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, StatusModified, statusOf(t, result, "cache.abc"))
}

func TestCompare_SnapshotFromDesktopTools(t *testing.T) {
	dir := t.TempDir()
	// st_mtime values as os.stat reports them for these timestamps.
	stamps := []struct {
		name     string
		sec, ns  int64
		recorded float64
	}{
		{"a.exr", 1531137934, 976787301, 1531137934.9767873},
		{"b.exr", 1772427486, 230530419, 1772427486.2305305},
		{"c.exr", 1548701179, 591682483, 1548701179.5916824},
		{"d.exr", 1533211934, 619659571, 1533211934.6196597},
	}
	files := map[string]FileEntry{}
	for _, s := range stamps {
		path := filepath.Join(dir, s.name)
		writeFile(t, path, "plate")
		mtime := time.Unix(s.sec, s.ns)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
		info, err := os.Stat(path)
		require.NoError(t, err)
		if !info.ModTime().Equal(mtime) {
			t.Skip("filesystem does not keep nanosecond mtimes")
		}
		assert.Equal(t, s.recorded, UnixSeconds(mtime), s.name)
		files[s.name] = FileEntry{Size: 5, Modified: s.recorded}
	}
	data, err := json.Marshal(map[string]any{"version": "1.0", "metadata": map[string]any{}, "files": files})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "folder_validation.json"), data, 0644))

	result, err := newTestValidator(Options{}).Compare(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, result.Clean(), "changed: %+v", result.Changed())
	assert.Equal(t, len(stamps), result.Counts[StatusValid])
}

func TestCompare_NoSnapshotReportsEverythingNew(t *testing.T) {
	dir := t.TempDir()
	v := newTestValidator(Options{})
	writeFile(t, filepath.Join(dir, "x.txt"), "x")

	result, err := v.Compare(context.Background(), dir)
	require.NoError(t, err)
	assert.False(t, result.SnapshotFound)
	assert.Equal(t, StatusNew, statusOf(t, result, "x.txt"))
}

func TestCompare_CleanAfterChip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	v := newTestValidator(Options{})
	writeFile(t, filepath.Join(dir, "a", "b", "c.txt"), "c")

	_, err := v.Chip(ctx, dir)
	require.NoError(t, err)

	result, err := v.Compare(ctx, dir)
	require.NoError(t, err)
	assert.True(t, result.Clean())
	assert.Empty(t, result.Changed())
}

func TestAnalyze_ExcludesSnapshotAndSymlinks(t *testing.T) {
	dir := t.TempDir()
	v := newTestValidator(Options{})
	writeFile(t, filepath.Join(dir, "real.txt"), "r")
	writeFile(t, filepath.Join(dir, "folder_validation.json"), "{}")
	writeFile(t, filepath.Join(dir, "nested", "folder_validation.json"), "{}")
	if err := os.Symlink(filepath.Join(dir, "real.txt"), filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	files, err := v.Analyze(context.Background(), dir)
	require.NoError(t, err)

	assert.Contains(t, files, "real.txt")
	assert.Contains(t, files, "nested/folder_validation.json")
	assert.NotContains(t, files, "folder_validation.json")
	assert.NotContains(t, files, "link.txt")
}

func TestAnalyze_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	writeFile(t, path, "x")

	_, err := newTestValidator(Options{}).Analyze(context.Background(), path)
	assert.Error(t, err)
}

func TestAnalyze_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.txt"), "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestValidator(Options{}).Analyze(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_CorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "folder_validation.json"), "{not json")

	_, found, err := newTestValidator(Options{}).Load(dir)
	require.Error(t, err)
	assert.True(t, found)
	assert.True(t, errors.Is(err, ErrCorruptSnapshot))
}

func TestLoad_Missing(t *testing.T) {
	snap, found, err := newTestValidator(Options{}).Load(t.TempDir())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, snap.Files)
}

func TestChip_EmbedsMetadata(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		want     map[string]any
	}{
		{
			name:     "valid metadata",
			metadata: `{"project_name": "Lumen", "project_code": "LMN"}`,
			want:     map[string]any{"project_name": "Lumen", "project_code": "LMN"},
		},
		{name: "malformed metadata", metadata: `{"project_name": `, want: map[string]any{}},
		{name: "no metadata", want: map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.metadata != "" {
				writeFile(t, filepath.Join(dir, "project_metadata.json"), tt.metadata)
			}

			_, err := newTestValidator(Options{}).Chip(context.Background(), dir)
			require.NoError(t, err)

			data, err := os.ReadFile(filepath.Join(dir, "folder_validation.json"))
			require.NoError(t, err)
			var snap Snapshot
			require.NoError(t, json.Unmarshal(data, &snap))
			assert.Equal(t, "1.0", snap.Version)
			assert.Equal(t, tt.want, snap.Metadata)
		})
	}
}

func TestChip_OverwritesWithoutMerge(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	v := newTestValidator(Options{})
	writeFile(t, filepath.Join(dir, "old.txt"), "o")
	_, err := v.Chip(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "old.txt")))
	writeFile(t, filepath.Join(dir, "new.txt"), "n")
	snap, err := v.Chip(ctx, dir)
	require.NoError(t, err)

	assert.NotContains(t, snap.Files, "old.txt")
	assert.Contains(t, snap.Files, "new.txt")
}

func TestSnapshot_CustomFileName(t *testing.T) {
	dir := t.TempDir()
	v := newTestValidator(Options{SnapshotFile: "chip.json"})
	writeFile(t, filepath.Join(dir, "a.txt"), "a")

	_, err := v.Chip(context.Background(), dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "chip.json"))

	result, err := v.Compare(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, result.Files, 1)
}

func TestClassify(t *testing.T) {
	current := map[string]FileEntry{
		"same.txt":    {Size: 1, Modified: 10},
		"grown.txt":   {Size: 2, Modified: 10},
		"touched.txt": {Size: 1, Modified: 11},
		"added.txt":   {Size: 1, Modified: 10},
	}
	recorded := map[string]FileEntry{
		"same.txt":    {Size: 1, Modified: 10},
		"grown.txt":   {Size: 1, Modified: 10},
		"touched.txt": {Size: 1, Modified: 10},
		"gone.txt":    {Size: 1, Modified: 10},
	}

	result := Classify(current, recorded)

	want := map[string]Status{
		"added.txt":   StatusNew,
		"gone.txt":    StatusDeleted,
		"grown.txt":   StatusModified,
		"same.txt":    StatusValid,
		"touched.txt": StatusModified,
	}
	got := map[string]Status{}
	for _, f := range result.Files {
		got[f.Path] = f.Status
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 2, result.Counts[StatusModified])
}

func TestFolderSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), "12345")
	writeFile(t, filepath.Join(dir, "sub", "b.bin"), "123")

	size, err := FolderSize(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(8), size)
}
