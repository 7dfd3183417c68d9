package rename

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/elilab/mediakit/internal/clock"
	"github.com/elilab/mediakit/internal/fsops"
	"github.com/elilab/mediakit/internal/planner"
)

// ErrNothingToRename is returned by Apply when no name changes.
var ErrNothingToRename = errors.New("nothing to rename")

// CollisionError lists every target that would overwrite a file or that
// two files in the batch share. No file was renamed.
type CollisionError struct {
	Conflicts []planner.Conflict
}

func (e *CollisionError) Error() string {
	if len(e.Conflicts) == 1 {
		c := e.Conflicts[0]
		return fmt.Sprintf("rename collision at %s: %s", c.Path, c.Reason)
	}
	paths := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		paths = append(paths, c.Path)
	}
	return fmt.Sprintf("%d rename collisions: %s", len(e.Conflicts), strings.Join(paths, ", "))
}

func (e *CollisionError) Unwrap() error {
	return planner.ErrConflict
}

// Pair maps one file to its new name.
type Pair struct {
	Path    string `json:"path"`
	Rel     string `json:"rel"`
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

// Changed reports whether the pair renames anything.
func (p Pair) Changed() bool {
	return p.OldName != p.NewName
}

// Target is the path the file is renamed to.
func (p Pair) Target() string {
	return filepath.Join(filepath.Dir(p.Path), p.NewName)
}

// Renamer previews and applies rename batches.
type Renamer struct {
	fs     fsops.FS
	clock  clock.Clock
	logger zerolog.Logger
}

// New creates a Renamer.
func New(fsys fsops.FS, clk clock.Clock, logger zerolog.Logger) *Renamer {
	return &Renamer{fs: fsys, clock: clk, logger: logger}
}

// Preview computes every new name. Any transform error or invalid
// resulting name fails the whole batch.
func (r *Renamer) Preview(files []File, t Transform) ([]Pair, error) {
	pairs := make([]Pair, 0, len(files))
	for i, f := range files {
		name, err := t.NewName(f, i)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Rel, err)
		}
		if err := r.fs.ValidateName(name); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Rel, err)
		}
		pairs = append(pairs, Pair{Path: f.Path, Rel: f.Rel, OldName: f.Name, NewName: name})
	}
	return pairs, nil
}

// Apply renames every changed pair inside its own directory and records a
// journal under root. Collisions are detected for the whole batch before
// the first rename. If a rename fails midway the journal still lists the
// renames that completed.
func (r *Renamer) Apply(root string, pairs []Pair) (*Journal, error) {
	plan := planner.New()
	checker := planner.NewConflictChecker(r.fs, false)
	for _, p := range pairs {
		if !p.Changed() {
			continue
		}
		target := p.Target()
		if c := checker.CheckPath(target, planner.KindFile, p.Path); c != nil {
			plan.AddConflict(*c)
			continue
		}
		plan.AddOperation(planner.Operation{Type: planner.OpRename, SourcePath: p.Path, DestPath: target})
	}

	if plan.HasConflicts() {
		return nil, &CollisionError{Conflicts: plan.Conflicts}
	}
	if len(plan.Operations) == 0 {
		return nil, ErrNothingToRename
	}

	journal := &Journal{
		ID:        uuid.NewString(),
		Root:      root,
		CreatedAt: r.clock.Now(),
		Entries:   []JournalEntry{},
	}

	_, execErr := planner.Execute(r.fs, plan, func(op planner.Operation, err error) {
		if err != nil {
			r.logger.Error().Err(err).Str("from", op.SourcePath).Str("to", op.DestPath).Msg("rename failed")
			return
		}
		from, _ := filepath.Rel(root, op.SourcePath)
		to, _ := filepath.Rel(root, op.DestPath)
		journal.Entries = append(journal.Entries, JournalEntry{
			From: filepath.ToSlash(from),
			To:   filepath.ToSlash(to),
		})
		r.logger.Debug().Str("from", op.SourcePath).Str("to", op.DestPath).Msg("renamed")
	})
	if execErr != nil {
		journal.Incomplete = true
	}

	if err := r.saveJournal(root, journal); err != nil {
		if execErr != nil {
			return journal, errors.Join(execErr, err)
		}
		return journal, err
	}
	if execErr != nil {
		return journal, execErr
	}

	r.logger.Info().Str("batch", journal.ID).Int("renamed", len(journal.Entries)).Msg("rename batch applied")
	return journal, nil
}
