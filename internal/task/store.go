package task

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/elilab/mediakit/internal/clock"
	"github.com/elilab/mediakit/internal/fsops"
)

// Store manages the task files of project directories.
type Store struct {
	fs     fsops.FS
	clock  clock.Clock
	logger zerolog.Logger
}

// NewStore creates a Store.
func NewStore(fsys fsops.FS, clk clock.Clock, logger zerolog.Logger) *Store {
	return &Store{fs: fsys, clock: clk, logger: logger}
}

func (s *Store) path(dir, name string) (string, error) {
	if err := s.fs.ValidateName(name); err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return filepath.Join(dir, FileName(name)), nil
}

func (s *Store) write(path string, t *Task) error {
	if err := s.fs.AtomicWrite(path, t.Format(), 0644); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// Assign creates a new task. A task with the same name must not exist.
func (s *Store) Assign(dir string, t *Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	path, err := s.path(dir, t.Name)
	if err != nil {
		return err
	}
	exists, err := s.fs.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check task: %w", err)
	}
	if exists {
		return fmt.Errorf("task %q: %w", t.Name, fsops.ErrExists)
	}
	if t.Status == "" {
		t.Status = StatusNotStarted
	}
	if err := s.write(path, t); err != nil {
		return err
	}
	s.logger.Info().Str("task", t.Name).Str("artist", t.Artist).Msg("task assigned")
	return nil
}

// List returns every task in dir sorted by name.
func (s *Store) List(dir string) ([]*Task, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	tasks := []*Task{}
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsTaskFile(e.Name()) {
			continue
		}
		data, err := s.fs.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			s.logger.Warn().Err(err).Str("file", e.Name()).Msg("skipping unreadable task")
			continue
		}
		tasks = append(tasks, Parse(data))
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	return tasks, nil
}

// Get loads one task.
func (s *Store) Get(dir, name string) (*Task, error) {
	path, err := s.path(dir, name)
	if err != nil {
		return nil, err
	}
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read task: %w", err)
	}
	return Parse(data), nil
}

// Edit replaces the task called name with t. When t has a new name the file
// moves; the new name must be free.
func (s *Store) Edit(dir, name string, t *Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	oldPath, err := s.path(dir, name)
	if err != nil {
		return err
	}
	if exists, err := s.fs.Exists(oldPath); err != nil {
		return fmt.Errorf("failed to check task: %w", err)
	} else if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	newPath, err := s.path(dir, t.Name)
	if err != nil {
		return err
	}
	if newPath != oldPath {
		exists, err := s.fs.Exists(newPath)
		if err != nil {
			return fmt.Errorf("failed to check task: %w", err)
		}
		if exists {
			return fmt.Errorf("task %q: %w", t.Name, fsops.ErrExists)
		}
	}

	if err := s.write(newPath, t); err != nil {
		return err
	}
	if newPath != oldPath {
		if err := s.fs.Remove(oldPath); err != nil {
			return fmt.Errorf("failed to remove old task file: %w", err)
		}
	}
	s.logger.Info().Str("task", t.Name).Msg("task updated")
	return nil
}

// Delete removes a task.
func (s *Store) Delete(dir, name string) error {
	path, err := s.path(dir, name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.logger.Info().Str("task", name).Msg("task deleted")
	return nil
}

// Complete marks a task completed today.
func (s *Store) Complete(dir, name string) (*Task, error) {
	t, err := s.Get(dir, name)
	if err != nil {
		return nil, err
	}
	t.Status = CompletedStatus(clock.Today(s.clock))
	path, err := s.path(dir, name)
	if err != nil {
		return nil, err
	}
	if err := s.write(path, t); err != nil {
		return nil, err
	}
	s.logger.Info().Str("task", name).Str("status", t.Status).Msg("task completed")
	return t, nil
}
