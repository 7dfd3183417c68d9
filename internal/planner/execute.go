package planner

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/elilab/mediakit/internal/fsops"
)

// ErrConflict is returned when executing a plan that has conflicts.
var ErrConflict = errors.New("conflict detected")

// Observer is called after every executed operation; err is nil on success.
type Observer func(op Operation, err error)

// ExecError reports the operation that stopped a plan.
type ExecError struct {
	Op        Operation
	Completed int
	Err       error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s %s failed after %d completed operations: %v", e.Op.Type, e.Op.DestPath, e.Completed, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Execute runs every operation of plan in order. It refuses to start when the
// plan has conflicts and stops at the first failure, returning an *ExecError.
func Execute(fs fsops.FS, plan *Plan, observe Observer) (int, error) {
	if plan.HasConflicts() {
		return 0, fmt.Errorf("%w: %d conflicting paths", ErrConflict, len(plan.Conflicts))
	}

	for i, op := range plan.Operations {
		err := executeOperation(fs, op)
		if observe != nil {
			observe(op, err)
		}
		if err != nil {
			return i, &ExecError{Op: op, Completed: i, Err: err}
		}
	}
	return len(plan.Operations), nil
}

func executeOperation(fs fsops.FS, op Operation) error {
	switch op.Type {
	case OpMkdir:
		perm := op.Perm
		if perm == 0 {
			perm = 0755
		}
		return fs.MkdirAll(op.DestPath, perm)
	case OpRename:
		return fs.Rename(op.SourcePath, op.DestPath)
	case OpCopy:
		return fs.Copy(op.SourcePath, op.DestPath)
	case OpWrite:
		if err := fs.MkdirAll(filepath.Dir(op.DestPath), 0755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}
		perm := op.Perm
		if perm == 0 {
			perm = 0644
		}
		return fs.AtomicWrite(op.DestPath, op.Data, perm)
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}
