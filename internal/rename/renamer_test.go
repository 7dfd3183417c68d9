package rename

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elilab/mediakit/internal/clock"
	"github.com/elilab/mediakit/internal/fsops"
	"github.com/elilab/mediakit/internal/logging"
	"github.com/elilab/mediakit/internal/planner"
)

func newTestRenamer() *Renamer {
	clk := clock.NewFakeClock(time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC))
	return New(fsops.NewRealFS(), clk, logging.Nop())
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(filepath.Base(path)), 0644))
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.png"))
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "sub", "c.png"))
	touch(t, filepath.Join(dir, JournalDir, JournalFile))

	files, err := List(dir, true)
	require.NoError(t, err)
	var rels []string
	for _, f := range files {
		rels = append(rels, f.Rel)
	}
	assert.Equal(t, []string{"a.png", "b.png", "sub/c.png"}, rels)

	flat, err := List(dir, false)
	require.NoError(t, err)
	assert.Len(t, flat, 2)
}

func TestPreview_DoesNotTouchDisk(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "b.png"))
	r := newTestRenamer()

	files, err := List(dir, true)
	require.NoError(t, err)
	pairs, err := r.Preview(files, AutoNumber{Start: 1, Step: 1, Padding: 2})
	require.NoError(t, err)

	require.Len(t, pairs, 2)
	assert.Equal(t, "01_a.png", pairs[0].NewName)
	assert.Equal(t, "02_b.png", pairs[1].NewName)
	assert.FileExists(t, filepath.Join(dir, "a.png"))
}

func TestPreview_InsertOutOfRangeFailsBatch(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "long_name.png"))
	touch(t, filepath.Join(dir, "x.png"))
	files, err := List(dir, true)
	require.NoError(t, err)

	_, err = newTestRenamer().Preview(files, Insert{Text: "_", Position: 8})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransform))
}

func TestPreview_RejectsPathSeparators(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))
	files, err := List(dir, true)
	require.NoError(t, err)

	_, err = newTestRenamer().Preview(files, Replace{Find: "a", With: "x/y"})
	assert.Error(t, err)
}

func TestApply_RenamesInOwnDirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "sub", "b.png"))
	r := newTestRenamer()

	files, err := List(dir, true)
	require.NoError(t, err)
	pairs, err := r.Preview(files, ConvertCase{Mode: CaseUpper})
	require.NoError(t, err)

	journal, err := r.Apply(dir, pairs)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "A.png"))
	assert.FileExists(t, filepath.Join(dir, "sub", "B.png"))
	assert.NoFileExists(t, filepath.Join(dir, "B.png"))
	assert.Len(t, journal.Entries, 2)
	assert.NotEmpty(t, journal.ID)
	assert.False(t, journal.Incomplete)
	assert.FileExists(t, JournalPath(dir))
}

func TestApply_CollisionWithExistingFileAbortsBatch(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "b.jpg"))
	touch(t, filepath.Join(dir, "b.png"))
	r := newTestRenamer()

	pairs := []Pair{
		{Path: filepath.Join(dir, "a.png"), Rel: "a.png", OldName: "a.png", NewName: "c.png"},
		{Path: filepath.Join(dir, "b.jpg"), Rel: "b.jpg", OldName: "b.jpg", NewName: "b.png"},
	}

	_, err := r.Apply(dir, pairs)
	require.Error(t, err)
	var collision *CollisionError
	require.True(t, errors.As(err, &collision))
	assert.Len(t, collision.Conflicts, 1)
	assert.True(t, errors.Is(err, planner.ErrConflict))

	assert.FileExists(t, filepath.Join(dir, "a.png"), "no rename may happen when the batch collides")
	assert.NoFileExists(t, JournalPath(dir))
}

func TestApply_DuplicateTargetsInBatch(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "shot.jpg"))
	touch(t, filepath.Join(dir, "shot.tga"))
	r := newTestRenamer()

	files, err := List(dir, true)
	require.NoError(t, err)
	pairs, err := r.Preview(files, ChangeExt{Ext: "png"})
	require.NoError(t, err)

	_, err = r.Apply(dir, pairs)
	var collision *CollisionError
	require.True(t, errors.As(err, &collision))
	assert.FileExists(t, filepath.Join(dir, "shot.jpg"))
	assert.FileExists(t, filepath.Join(dir, "shot.tga"))
	assert.NoFileExists(t, filepath.Join(dir, "shot.png"))
}

func TestApply_NothingChanged(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))
	files, err := List(dir, true)
	require.NoError(t, err)
	r := newTestRenamer()
	pairs, err := r.Preview(files, Replace{Find: "zzz", With: "y"})
	require.NoError(t, err)

	_, err = r.Apply(dir, pairs)
	assert.ErrorIs(t, err, ErrNothingToRename)
}

func TestUndo(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "sub", "b.png"))
	r := newTestRenamer()

	files, err := List(dir, true)
	require.NoError(t, err)
	pairs, err := r.Preview(files, AutoNumber{Start: 1, Step: 1, Padding: 3})
	require.NoError(t, err)
	applied, err := r.Apply(dir, pairs)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "001_a.png"))

	undone, err := r.Undo(dir)
	require.NoError(t, err)
	assert.Equal(t, applied.ID, undone.ID)
	assert.FileExists(t, filepath.Join(dir, "a.png"))
	assert.FileExists(t, filepath.Join(dir, "sub", "b.png"))
	assert.NoFileExists(t, filepath.Join(dir, "001_a.png"))
	assert.NoFileExists(t, JournalPath(dir))

	_, err = r.Undo(dir)
	assert.ErrorIs(t, err, ErrNoJournal)
}

func TestUndo_RefusesWhenOriginalNameTaken(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))
	r := newTestRenamer()
	files, err := List(dir, true)
	require.NoError(t, err)
	pairs, err := r.Preview(files, ChangeExt{Ext: "jpg"})
	require.NoError(t, err)
	_, err = r.Apply(dir, pairs)
	require.NoError(t, err)

	touch(t, filepath.Join(dir, "a.png"))

	_, err = r.Undo(dir)
	var collision *CollisionError
	require.True(t, errors.As(err, &collision))
	assert.FileExists(t, filepath.Join(dir, "a.jpg"))
}
