// Package validation snapshots a directory's file metadata ("chipping") and
// classifies later drift against that snapshot.
//
// A snapshot maps every file under a root, by slash-separated relative path,
// to its size and modification time. Compare walks the root again and labels
// each path new, modified, deleted or valid. Chip replaces the snapshot
// wholesale; there is no merge or partial update.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SchemaVersion is written into every snapshot. It is informational only;
// snapshots with other versions are still read.
const SchemaVersion = "1.0"

// ErrCorruptSnapshot indicates the snapshot file exists but is not valid JSON.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// FileEntry is the recorded state of one file.
type FileEntry struct {
	// Size in bytes
	Size int64 `json:"size"`

	// Modified is the modification time in fractional Unix seconds
	Modified float64 `json:"modified"`

	// SHA256 is set only when the snapshot was chipped with hashing
	SHA256 string `json:"sha256,omitempty"`
}

// Snapshot is the on-disk validation record.
type Snapshot struct {
	Version  string               `json:"version"`
	Metadata map[string]any       `json:"metadata"`
	Files    map[string]FileEntry `json:"files"`
}

// NewSnapshot creates an empty snapshot at the current schema version.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version:  SchemaVersion,
		Metadata: map[string]any{},
		Files:    map[string]FileEntry{},
	}
}

// UnixSeconds converts t into the fractional seconds stored in snapshots. The
// sum is rounded the way Python's os.stat computes st_mtime, so snapshots
// chipped by the desktop tools compare equal for untouched files.
func UnixSeconds(t time.Time) float64 {
	frac := float64(float64(t.Nanosecond()) * 1e-9)
	return float64(t.Unix()) + frac
}

// SnapshotPath returns where the snapshot for root lives.
func (v *Validator) SnapshotPath(root string) string {
	return filepath.Join(root, v.snapshotName)
}

// Load reads the snapshot for root. A missing snapshot yields an empty one
// and found=false.
func (v *Validator) Load(root string) (snap *Snapshot, found bool, err error) {
	data, err := v.fs.ReadFile(v.SnapshotPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return NewSnapshot(), false, nil
		}
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	snap = &Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, v.SnapshotPath(root), err)
	}
	if snap.Files == nil {
		snap.Files = map[string]FileEntry{}
	}
	if snap.Metadata == nil {
		snap.Metadata = map[string]any{}
	}
	return snap, true, nil
}

// Save writes snap for root atomically with a 4-space indent, matching
// folder_validation.json files chipped by the eli_lab desktop tools.
func (v *Validator) Save(root string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	data = append(data, '\n')
	if err := v.fs.AtomicWrite(v.SnapshotPath(root), data, 0644); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
