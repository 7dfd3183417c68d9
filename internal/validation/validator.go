package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/elilab/mediakit/internal/fsops"
	"github.com/elilab/mediakit/internal/hash"
)

// Status classifies one path in a comparison.
type Status string

const (
	StatusValid    Status = "valid"
	StatusNew      Status = "new"
	StatusModified Status = "modified"
	StatusDeleted  Status = "deleted"
)

// FileStatus is the comparison outcome for one path.
type FileStatus struct {
	Path     string     `json:"path"`
	Status   Status     `json:"status"`
	Current  *FileEntry `json:"current,omitempty"`
	Recorded *FileEntry `json:"recorded,omitempty"`
}

// Result is the outcome of Compare.
type Result struct {
	Root          string         `json:"root"`
	SnapshotFound bool           `json:"snapshotFound"`
	Files         []FileStatus   `json:"files"`
	Counts        map[Status]int `json:"counts"`
}

// Clean reports whether every path is valid.
func (r *Result) Clean() bool {
	return r.Counts[StatusNew] == 0 && r.Counts[StatusModified] == 0 && r.Counts[StatusDeleted] == 0
}

// Changed returns the paths that are not valid.
func (r *Result) Changed() []FileStatus {
	var out []FileStatus
	for _, f := range r.Files {
		if f.Status != StatusValid {
			out = append(out, f)
		}
	}
	return out
}

// Options configures a Validator.
type Options struct {
	SnapshotFile string
	MetadataFile string

	// Hash records and compares SHA-256 digests in addition to size and mtime.
	Hash bool
}

// Validator chips and compares directory snapshots.
type Validator struct {
	fs           fsops.FS
	hasher       hash.Hasher
	logger       zerolog.Logger
	snapshotName string
	metadataName string
	withHash     bool
}

// New creates a Validator.
func New(fsys fsops.FS, hasher hash.Hasher, logger zerolog.Logger, opts Options) *Validator {
	snapshotName := opts.SnapshotFile
	if snapshotName == "" {
		snapshotName = "folder_validation.json"
	}
	metadataName := opts.MetadataFile
	if metadataName == "" {
		metadataName = "project_metadata.json"
	}
	return &Validator{
		fs:           fsys,
		hasher:       hasher,
		logger:       logger,
		snapshotName: snapshotName,
		metadataName: metadataName,
		withHash:     opts.Hash,
	}
}

// Analyze walks root and records every regular file except the snapshot.
// Symlinks are skipped. A file that cannot be stat'ed is logged and left out.
func (v *Validator) Analyze(ctx context.Context, root string) (map[string]FileEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	files := make(map[string]FileEntry)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			v.logger.Warn().Err(walkErr).Str("path", path).Msg("skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == v.snapshotName {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			v.logger.Warn().Err(err).Str("path", path).Msg("error analyzing file")
			return nil
		}
		entry := FileEntry{Size: fi.Size(), Modified: UnixSeconds(fi.ModTime())}
		if v.withHash {
			digest, err := v.hasher.HashFile(path)
			if err != nil {
				v.logger.Warn().Err(err).Str("path", path).Msg("error hashing file")
				return nil
			}
			entry.SHA256 = digest
		}
		files[rel] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	v.logger.Debug().Str("root", root).Int("files", len(files)).Msg("analyzed directory")
	return files, nil
}

// Compare classifies the current contents of root against its snapshot.
func (v *Validator) Compare(ctx context.Context, root string) (*Result, error) {
	current, err := v.Analyze(ctx, root)
	if err != nil {
		return nil, err
	}
	snap, found, err := v.Load(root)
	if err != nil {
		return nil, err
	}

	result := Classify(current, snap.Files)
	result.Root = root
	result.SnapshotFound = found
	return result, nil
}

// Classify diffs a current scan against recorded entries.
//
//   - in current only: new
//   - in both with a different size or mtime (or digest, when both have
//     one): modified
//   - in recorded only: deleted
//   - otherwise: valid
func Classify(current, recorded map[string]FileEntry) *Result {
	result := &Result{
		Files: make([]FileStatus, 0, len(current)),
		Counts: map[Status]int{
			StatusValid:    0,
			StatusNew:      0,
			StatusModified: 0,
			StatusDeleted:  0,
		},
	}

	for path, cur := range current {
		cur := cur
		fsStatus := FileStatus{Path: path, Current: &cur}
		rec, ok := recorded[path]
		switch {
		case !ok:
			fsStatus.Status = StatusNew
		case entryChanged(cur, rec):
			rec := rec
			fsStatus.Status = StatusModified
			fsStatus.Recorded = &rec
		default:
			rec := rec
			fsStatus.Status = StatusValid
			fsStatus.Recorded = &rec
		}
		result.Files = append(result.Files, fsStatus)
	}

	for path, rec := range recorded {
		if _, ok := current[path]; ok {
			continue
		}
		rec := rec
		result.Files = append(result.Files, FileStatus{Path: path, Status: StatusDeleted, Recorded: &rec})
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	for _, f := range result.Files {
		result.Counts[f.Status]++
	}
	return result
}

func entryChanged(cur, rec FileEntry) bool {
	if cur.Size != rec.Size || cur.Modified != rec.Modified {
		return true
	}
	return cur.SHA256 != "" && rec.SHA256 != "" && cur.SHA256 != rec.SHA256
}

// Chip recomputes the file list of root and overwrites its snapshot,
// embedding whatever project metadata file sits next to it.
func (v *Validator) Chip(ctx context.Context, root string) (*Snapshot, error) {
	files, err := v.Analyze(ctx, root)
	if err != nil {
		return nil, err
	}

	snap := NewSnapshot()
	snap.Files = files
	snap.Metadata = v.readMetadata(root)

	if err := v.Save(root, snap); err != nil {
		return nil, err
	}
	v.logger.Info().Str("root", root).Int("files", len(files)).Msg("directory chipped")
	return snap, nil
}

// readMetadata returns the project metadata next to the snapshot, or an
// empty object when it is absent or unreadable.
func (v *Validator) readMetadata(root string) map[string]any {
	path := filepath.Join(root, v.metadataName)
	data, err := v.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			v.logger.Info().Str("path", path).Msg("no project metadata found, skipping")
		} else {
			v.logger.Warn().Err(err).Str("path", path).Msg("error loading project metadata")
		}
		return map[string]any{}
	}

	meta := map[string]any{}
	if err := json.Unmarshal(data, &meta); err != nil {
		v.logger.Warn().Err(err).Str("path", path).Msg("project metadata is not valid JSON, skipping")
		return map[string]any{}
	}
	return meta
}

// FolderSize returns the total size of regular, non-symlink files under root.
func FolderSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to size %s: %w", root, err)
	}
	return total, nil
}
