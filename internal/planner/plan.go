package planner

import "os"

// Plan is an ordered set of filesystem operations.
type Plan struct {
	// Operations is the ordered list of operations to execute
	Operations []Operation `json:"operations"`

	// Conflicts is a list of detected conflicts (empty if no conflicts)
	Conflicts []Conflict `json:"conflicts"`
}

// Operation represents a single filesystem operation to execute.
type Operation struct {
	// Type is the operation type: "mkdir", "rename", "copy", "write"
	Type string `json:"type"`

	// SourcePath is the source for rename and copy (absolute)
	SourcePath string `json:"source,omitempty"`

	// DestPath is the path created or replaced (absolute)
	DestPath string `json:"dest"`

	// Data is the content for write operations
	Data []byte `json:"-"`

	// Perm is the mode for mkdir and write operations
	Perm os.FileMode `json:"-"`
}

// Conflict represents a conflict detected during planning.
type Conflict struct {
	// Path is the destination where the conflict was detected
	Path string `json:"path"`

	// Reason is a human-readable explanation of the conflict
	Reason string `json:"reason"`

	// Existing describes what currently exists at the path
	Existing string `json:"existing"`

	// Incoming describes what the plan wants to create
	Incoming string `json:"incoming"`
}

// Operation type constants
const (
	OpMkdir  = "mkdir"
	OpRename = "rename"
	OpCopy   = "copy"
	OpWrite  = "write"
)

// New creates a new empty Plan.
func New() *Plan {
	return &Plan{
		Operations: []Operation{},
		Conflicts:  []Conflict{},
	}
}

// HasConflicts returns true if the plan has any conflicts.
func (p *Plan) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// AddOperation adds an operation to the plan.
func (p *Plan) AddOperation(op Operation) {
	p.Operations = append(p.Operations, op)
}

// AddConflict adds a conflict to the plan.
func (p *Plan) AddConflict(conflict Conflict) {
	p.Conflicts = append(p.Conflicts, conflict)
}

// Mkdir appends a directory creation.
func (p *Plan) Mkdir(path string) {
	p.AddOperation(Operation{Type: OpMkdir, DestPath: path, Perm: 0755})
}

// Count returns the number of operations of the given type.
func (p *Plan) Count(opType string) int {
	n := 0
	for _, op := range p.Operations {
		if op.Type == opType {
			n++
		}
	}
	return n
}
