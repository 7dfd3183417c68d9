package planner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elilab/mediakit/internal/fsops"
)

func TestNew(t *testing.T) {
	plan := New()

	assert.NotNil(t, plan.Operations)
	assert.NotNil(t, plan.Conflicts)
	assert.False(t, plan.HasConflicts())
}

func TestPlan_Count(t *testing.T) {
	plan := New()
	plan.Mkdir("/a")
	plan.Mkdir("/b")
	plan.AddOperation(Operation{Type: OpRename, SourcePath: "/c", DestPath: "/d"})

	assert.Equal(t, 2, plan.Count(OpMkdir))
	assert.Equal(t, 1, plan.Count(OpRename))
	assert.Equal(t, 0, plan.Count(OpCopy))
}

func TestConflictChecker_CheckPath(t *testing.T) {
	dir := t.TempDir()
	existingFile := filepath.Join(dir, "file.txt")
	existingDir := filepath.Join(dir, "folder")
	require.NoError(t, os.WriteFile(existingFile, []byte("x"), 0644))
	require.NoError(t, os.Mkdir(existingDir, 0755))

	tests := []struct {
		name      string
		dest      string
		incoming  string
		force     bool
		wantClash bool
	}{
		{name: "missing file", dest: filepath.Join(dir, "new.txt"), incoming: KindFile},
		{name: "existing file", dest: existingFile, incoming: KindFile, wantClash: true},
		{name: "existing file with force", dest: existingFile, incoming: KindFile, force: true},
		{name: "existing directory for mkdir", dest: existingDir, incoming: KindDirectory},
		{name: "file where directory wanted", dest: existingFile, incoming: KindDirectory, wantClash: true},
		{name: "directory where file wanted", dest: existingDir, incoming: KindFile, force: true, wantClash: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewConflictChecker(fsops.NewRealFS(), tt.force)
			conflict := checker.CheckPath(tt.dest, tt.incoming, "")
			if tt.wantClash {
				require.NotNil(t, conflict)
				assert.Equal(t, tt.dest, conflict.Path)
			} else {
				assert.Nil(t, conflict)
			}
		})
	}
}

func TestConflictChecker_DuplicateTargets(t *testing.T) {
	dir := t.TempDir()
	checker := NewConflictChecker(fsops.NewRealFS(), false)
	dest := filepath.Join(dir, "same.txt")

	assert.Nil(t, checker.CheckPath(dest, KindFile, filepath.Join(dir, "a.txt")))
	conflict := checker.CheckPath(dest, KindFile, filepath.Join(dir, "b.txt"))
	require.NotNil(t, conflict)
	assert.Contains(t, conflict.Reason, "more than once")

	sub := filepath.Join(dir, "sub")
	assert.Nil(t, checker.CheckPath(sub, KindDirectory, ""))
	assert.Nil(t, checker.CheckPath(sub, KindDirectory, ""), "repeated mkdir is fine")
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	fs := fsops.NewRealFS()
	src := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0644))

	plan := New()
	plan.Mkdir(filepath.Join(dir, "out", "deep"))
	plan.AddOperation(Operation{Type: OpCopy, SourcePath: src, DestPath: filepath.Join(dir, "out", "copy.txt")})
	plan.AddOperation(Operation{Type: OpWrite, DestPath: filepath.Join(dir, "out", "note.txt"), Data: []byte("hi")})
	plan.AddOperation(Operation{Type: OpRename, SourcePath: src, DestPath: filepath.Join(dir, "renamed.txt")})

	var seen []string
	n, err := Execute(fs, plan, func(op Operation, err error) {
		assert.NoError(t, err)
		seen = append(seen, op.Type)
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []string{OpMkdir, OpCopy, OpWrite, OpRename}, seen)

	data, err := os.ReadFile(filepath.Join(dir, "out", "note.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
	_, err = os.Stat(filepath.Join(dir, "renamed.txt"))
	assert.NoError(t, err)
}

func TestExecute_RefusesConflicts(t *testing.T) {
	plan := New()
	plan.AddConflict(Conflict{Path: "/x", Reason: "exists"})

	n, err := Execute(fsops.NewRealFS(), plan, nil)
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestExecute_StopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	plan := New()
	plan.Mkdir(filepath.Join(dir, "a"))
	plan.AddOperation(Operation{Type: OpRename, SourcePath: filepath.Join(dir, "missing"), DestPath: filepath.Join(dir, "b")})
	plan.Mkdir(filepath.Join(dir, "c"))

	n, err := Execute(fsops.NewRealFS(), plan, nil)
	require.Error(t, err)
	assert.Equal(t, 1, n)

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, 1, execErr.Completed)
	_, statErr := os.Stat(filepath.Join(dir, "c"))
	assert.True(t, os.IsNotExist(statErr))
}
