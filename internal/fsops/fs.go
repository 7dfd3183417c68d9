// Package fsops provides the filesystem operations mediakit mutates disk with.
//
// Scaffolding, renaming, provisioning and snapshot writes all go through the
// FS interface so commands can be exercised against a temp directory and so
// every write to a JSON or text record is atomic.
//
// Key features:
//   - Atomic writes using temp file + rename
//   - Name validation for user-supplied folder, task and file names
//   - Collision-aware rename (never silently overwrites)
//   - Copy that preserves the source mode and modification time
package fsops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrExists is returned when a mutation would overwrite an existing path.
var ErrExists = errors.New("path already exists")

// FS provides an abstraction for filesystem operations.
type FS interface {
	// Stat returns file info, following symlinks.
	Stat(path string) (os.FileInfo, error)

	// Lstat returns file info without following symlinks.
	Lstat(path string) (os.FileInfo, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm os.FileMode) error

	// Remove removes a file or empty directory.
	Remove(path string) error

	// Rename moves oldpath to newpath. It fails with ErrExists if newpath exists.
	Rename(oldpath, newpath string) error

	// Copy copies a file or directory from src to dst.
	Copy(src, dst string) error

	// AtomicWrite writes data to path through a temp file and a rename.
	AtomicWrite(path string, data []byte, perm os.FileMode) error

	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// Exists checks if a path exists.
	Exists(path string) (bool, error)

	// ValidateRelPath validates a relative path for safety.
	ValidateRelPath(relPath string) error

	// ValidateName validates a single path element supplied by a user.
	ValidateName(name string) error
}

// RealFS implements FS on the local disk.
type RealFS struct{}

var _ FS = (*RealFS)(nil)

// NewRealFS creates a new RealFS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

func (fs *RealFS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (fs *RealFS) Lstat(path string) (os.FileInfo, error) {
	return os.Lstat(path)
}

func (fs *RealFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (fs *RealFS) Remove(path string) error {
	return os.Remove(path)
}

// Rename moves oldpath to newpath, refusing to replace an existing target.
// A target that is the source itself, as with a case-only rename on a
// case-insensitive volume, is allowed.
func (fs *RealFS) Rename(oldpath, newpath string) error {
	target, err := os.Lstat(newpath)
	switch {
	case err == nil:
		source, serr := os.Lstat(oldpath)
		if serr != nil || !os.SameFile(source, target) {
			return fmt.Errorf("rename %s: %w: %s", oldpath, ErrExists, newpath)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to stat rename target: %w", err)
	}
	return os.Rename(oldpath, newpath)
}

// Copy copies src to dst. A directory is copied recursively. Symlinks in src
// are followed. A destination of the other kind (file vs directory) is
// replaced.
func (fs *RealFS) Copy(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if dstInfo, err := os.Lstat(dst); err == nil && dstInfo.IsDir() != srcInfo.IsDir() {
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("copy: clear %s: %w", dst, err)
		}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("copy: stat %s: %w", dst, err)
	}

	if !srcInfo.IsDir() {
		return copyFile(src, dst, srcInfo)
	}
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("copy %s: %w", path, err)
		}
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(path, target, info)
	})
}

// copyFile copies one file and keeps its mode and modification time, so a
// seeded template looks untouched.
func copyFile(src, dst string, info os.FileInfo) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	_, err = io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// AtomicWrite writes data to a hidden temp file beside path and renames it
// into place. Readers see either the old content or the new, never a torn
// record.
func (fs *RealFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(dir, ".mediakit-tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("write %s: sync: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: close: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("write %s: chmod: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	committed = true
	return nil
}

func (fs *RealFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Exists reports whether path exists, without following a final symlink.
func (fs *RealFS) Exists(path string) (bool, error) {
	switch _, err := os.Lstat(path); {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// ValidateRelPath rejects paths that are empty, absolute or climb out of the
// directory they are joined to, such as template-map entries.
func (fs *RealFS) ValidateRelPath(relPath string) error {
	cleaned := filepath.Clean(relPath)
	switch {
	case cleaned == ".":
		return fmt.Errorf("invalid path %q: empty", relPath)
	case filepath.IsAbs(cleaned):
		return fmt.Errorf("invalid path %q: must be relative", relPath)
	case cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)):
		return fmt.Errorf("invalid path %q: path traversal not allowed", relPath)
	}
	return nil
}

// ValidateName validates a name that becomes exactly one path element:
// a project, character, asset or task name, or a renamed file's base name.
func (fs *RealFS) ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("invalid name: empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid name %q: must not contain path separators", name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid name %q: path traversal not allowed", name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("invalid name %q: contains NUL byte", name)
	}
	return nil
}
