package rename

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/elilab/mediakit/internal/planner"
)

// JournalFile is the journal's name inside JournalDir.
const JournalFile = "rename-journal.json"

// ErrNoJournal is returned by Undo when root has no recorded batch.
var ErrNoJournal = errors.New("no rename batch to undo")

// Journal records the renames of the last batch applied under Root.
type Journal struct {
	ID         string         `json:"id"`
	Root       string         `json:"root"`
	CreatedAt  time.Time      `json:"createdAt"`
	Incomplete bool           `json:"incomplete,omitempty"`
	Entries    []JournalEntry `json:"entries"`
}

// JournalEntry is one completed rename, relative to the journal root.
type JournalEntry struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// JournalPath returns the journal location for root.
func JournalPath(root string) string {
	return filepath.Join(root, JournalDir, JournalFile)
}

func (r *Renamer) saveJournal(root string, j *Journal) error {
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode rename journal: %w", err)
	}
	if err := r.fs.AtomicWrite(JournalPath(root), data, 0644); err != nil {
		return fmt.Errorf("failed to write rename journal: %w", err)
	}
	return nil
}

// LoadJournal reads the last batch recorded under root.
func (r *Renamer) LoadJournal(root string) (*Journal, error) {
	data, err := r.fs.ReadFile(JournalPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoJournal
		}
		return nil, fmt.Errorf("failed to read rename journal: %w", err)
	}
	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to parse rename journal: %w", err)
	}
	return &j, nil
}

// Undo reverses the last batch under root, newest rename first, and removes
// the journal once every entry is restored.
func (r *Renamer) Undo(root string) (*Journal, error) {
	j, err := r.LoadJournal(root)
	if err != nil {
		return nil, err
	}

	plan := planner.New()
	checker := planner.NewConflictChecker(r.fs, false)
	for i := len(j.Entries) - 1; i >= 0; i-- {
		e := j.Entries[i]
		from := filepath.Join(root, filepath.FromSlash(e.To))
		to := filepath.Join(root, filepath.FromSlash(e.From))
		if c := checker.CheckPath(to, planner.KindFile, from); c != nil {
			plan.AddConflict(*c)
			continue
		}
		plan.AddOperation(planner.Operation{Type: planner.OpRename, SourcePath: from, DestPath: to})
	}
	if plan.HasConflicts() {
		return nil, &CollisionError{Conflicts: plan.Conflicts}
	}

	if _, err := planner.Execute(r.fs, plan, nil); err != nil {
		return nil, fmt.Errorf("undo of batch %s stopped: %w", j.ID, err)
	}
	if err := r.fs.Remove(JournalPath(root)); err != nil && !os.IsNotExist(err) {
		return j, fmt.Errorf("failed to remove rename journal: %w", err)
	}

	r.logger.Info().Str("batch", j.ID).Int("restored", len(j.Entries)).Msg("rename batch undone")
	return j, nil
}
