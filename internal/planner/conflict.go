package planner

import (
	"fmt"
	"os"

	"github.com/elilab/mediakit/internal/fsops"
)

// Incoming kinds passed to ConflictChecker.CheckPath.
const (
	KindFile      = "file"
	KindDirectory = "directory"
)

// ConflictChecker checks destinations while a plan is being built.
// It remembers every destination already claimed by the plan so two
// operations can never target the same path.
type ConflictChecker struct {
	fs      fsops.FS
	force   bool
	claimed map[string]string
}

// NewConflictChecker creates a new ConflictChecker. With force, existing
// files may be replaced by copy and write operations.
func NewConflictChecker(fs fsops.FS, force bool) *ConflictChecker {
	return &ConflictChecker{
		fs:      fs,
		force:   force,
		claimed: make(map[string]string),
	}
}

// CheckPath checks destPath for an incoming file or directory.
// source is the path being moved or copied there, or "" when the content
// is generated. Returns nil when the destination is safe to use.
func (c *ConflictChecker) CheckPath(destPath, incomingType, source string) *Conflict {
	if prev, ok := c.claimed[destPath]; ok {
		if incomingType == KindDirectory && prev == KindDirectory {
			return nil
		}
		return &Conflict{
			Path:     destPath,
			Reason:   "Destination is targeted more than once in this batch",
			Existing: "planned " + prev,
			Incoming: incomingType,
		}
	}

	conflict := c.checkDisk(destPath, incomingType, source)
	if conflict == nil {
		c.claimed[destPath] = incomingType
	}
	return conflict
}

func (c *ConflictChecker) checkDisk(destPath, incomingType, source string) *Conflict {
	info, err := c.fs.Lstat(destPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &Conflict{
			Path:     destPath,
			Reason:   fmt.Sprintf("Failed to check path: %v", err),
			Existing: "unknown",
			Incoming: incomingType,
		}
	}

	existingType := KindFile
	if info.IsDir() {
		existingType = KindDirectory
	}

	if incomingType == KindDirectory {
		if existingType == KindDirectory {
			return nil
		}
		return &Conflict{
			Path:     destPath,
			Reason:   "Type mismatch: existing is file, incoming is directory",
			Existing: existingType,
			Incoming: incomingType,
		}
	}

	if source != "" {
		if srcInfo, err := c.fs.Lstat(source); err == nil && os.SameFile(srcInfo, info) {
			// Case-only rename on a case-insensitive filesystem.
			return nil
		}
	}

	if existingType == KindDirectory {
		return &Conflict{
			Path:     destPath,
			Reason:   "Type mismatch: existing is directory, incoming is file",
			Existing: existingType,
			Incoming: incomingType,
		}
	}

	if c.force {
		return nil
	}
	return &Conflict{
		Path:     destPath,
		Reason:   "File already exists at destination",
		Existing: existingType,
		Incoming: incomingType,
	}
}
