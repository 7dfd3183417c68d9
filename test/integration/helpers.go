package integration

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/elilab/mediakit/internal/clock"
	"github.com/elilab/mediakit/internal/fsops"
)

// errInjected is returned by faultFS once its rename budget is used up.
var errInjected = errors.New("injected rename failure")

// faultFS wraps the real filesystem and fails renames after a set number
// succeed.
type faultFS struct {
	fsops.FS

	// failAfter is how many renames succeed before the rest fail; 0 means
	// never fail.
	failAfter int
	renames   int
}

func (f *faultFS) Rename(oldpath, newpath string) error {
	f.renames++
	if f.failAfter > 0 && f.renames > f.failAfter {
		return errInjected
	}
	return f.FS.Rename(oldpath, newpath)
}

// testEnv is a studio workspace in a temp directory.
type testEnv struct {
	parent    string
	templates string
	fs        *faultFS
	clock     *clock.FakeClock
	logger    zerolog.Logger
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		parent:    t.TempDir(),
		templates: t.TempDir(),
		fs:        &faultFS{FS: fsops.NewRealFS()},
		clock:     clock.NewFakeClock(time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)),
		logger:    zerolog.Nop(),
	}
	for _, name := range []string{"Asset.blend", "Character.blend", "Location.blend"} {
		writeFile(t, filepath.Join(env.templates, name), "template "+name)
	}
	return env
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func fileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	return err == nil
}
