package rename

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// JournalDir is the per-directory state folder. It is never listed.
const JournalDir = ".mediakit"

// File is one rename candidate.
type File struct {
	// Path is the absolute or root-joined path
	Path string

	// Rel is the slash-separated path below the listing root
	Rel string

	// Name is the base name
	Name string

	Info os.FileInfo
}

// Dir returns the directory the file lives in.
func (f File) Dir() string {
	return filepath.Dir(f.Path)
}

// List returns the regular files under root sorted by relative path.
// With recursive false only root's direct children are listed.
func List(root string, recursive bool) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || d.Name() == JournalDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, File{
			Path: path,
			Rel:  filepath.ToSlash(rel),
			Name: d.Name(),
			Info: fi,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}
