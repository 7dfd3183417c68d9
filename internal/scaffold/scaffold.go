package scaffold

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/elilab/mediakit/internal/fsops"
	"github.com/elilab/mediakit/internal/planner"
)

// Result lists what Create and CreateDCC did.
type Result struct {
	Root     string   `json:"root"`
	Created  []string `json:"created"`
	Existing []string `json:"existing,omitempty"`
	Files    []string `json:"files,omitempty"`
}

// Scaffolder creates project trees.
type Scaffolder struct {
	fs     fsops.FS
	logger zerolog.Logger
}

// New creates a Scaffolder.
func New(fsys fsops.FS, logger zerolog.Logger) *Scaffolder {
	return &Scaffolder{fs: fsys, logger: logger}
}

// Validate checks every name in the layout is a single safe path element.
func (s *Scaffolder) Validate(l *Layout) error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: project name is required", ErrValidation)
	}
	var errs []error
	check := func(kind, name string) {
		if err := s.fs.ValidateName(name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
		}
	}
	check("project", l.Name)
	for _, c := range l.Characters {
		check("character", c)
	}
	for name, subs := range l.Locations {
		check("location", name)
		for _, sub := range subs {
			check("location "+name, sub)
		}
	}
	for name, subs := range l.Assets {
		check("asset", name)
		for _, sub := range subs {
			check("asset "+name, sub)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrValidation, errors.Join(errs...))
	}
	return nil
}

// Create builds the layout under root. Existing directories are kept, so
// running it again only adds what is missing.
func (s *Scaffolder) Create(root string, l *Layout) (*Result, error) {
	if err := s.Validate(l); err != nil {
		return nil, err
	}

	plan := planner.New()
	checker := planner.NewConflictChecker(s.fs, false)
	result := &Result{Root: filepath.Join(root, l.Name), Created: []string{}}

	for _, rel := range l.Dirs() {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if c := checker.CheckPath(path, planner.KindDirectory, ""); c != nil {
			plan.AddConflict(*c)
			continue
		}
		exists, err := s.fs.Exists(path)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", path, err)
		}
		if exists {
			result.Existing = append(result.Existing, path)
			continue
		}
		plan.Mkdir(path)
		result.Created = append(result.Created, path)
	}

	if plan.HasConflicts() {
		c := plan.Conflicts[0]
		return nil, fmt.Errorf("%w: %s: %s", planner.ErrConflict, c.Path, c.Reason)
	}
	if _, err := planner.Execute(s.fs, plan, nil); err != nil {
		return nil, err
	}

	s.logger.Info().Str("project", l.Name).Int("created", len(result.Created)).Msg("project structure created")
	return result, nil
}

// DCCOptions configures a Blender project folder.
type DCCOptions struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	RenderPath   string `json:"renderPath"`
	WorkingUnits string `json:"workingUnits"`
	LibraryPath  string `json:"libraryPath"`
}

// dccFolders are created inside every DCC project.
var dccFolders = []string{"characters", "assets", "locations", "renders"}

// CreateDCC creates <Path>/<Name> with the standard DCC folders and a stub
// <Name>.blend. The project folder must not exist yet.
func (s *Scaffolder) CreateDCC(opts DCCOptions) (*Result, error) {
	if strings.TrimSpace(opts.Name) == "" || strings.TrimSpace(opts.Path) == "" || strings.TrimSpace(opts.RenderPath) == "" {
		return nil, fmt.Errorf("%w: project name, project path and render path are required", ErrValidation)
	}
	if err := s.fs.ValidateName(opts.Name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	full := filepath.Join(opts.Path, opts.Name)
	exists, err := s.fs.Exists(full)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", full, err)
	}
	if exists {
		return nil, fmt.Errorf("project %s: %w", full, fsops.ErrExists)
	}

	result := &Result{Root: full, Created: []string{full}}
	plan := planner.New()
	plan.Mkdir(full)
	for _, name := range dccFolders {
		dir := filepath.Join(full, name)
		plan.Mkdir(dir)
		result.Created = append(result.Created, dir)
	}
	scene := filepath.Join(full, opts.Name+".blend")
	plan.AddOperation(planner.Operation{
		Type:     planner.OpWrite,
		DestPath: scene,
		Data:     []byte(sceneStub(opts)),
		Perm:     0644,
	})
	result.Files = []string{scene}

	if _, err := planner.Execute(s.fs, plan, nil); err != nil {
		return nil, err
	}
	s.logger.Info().Str("project", full).Msg("DCC project created")
	return result, nil
}

func sceneStub(opts DCCOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Blender project file for %s\n", opts.Name)
	fmt.Fprintf(&b, "# Render Path: %s\n", opts.RenderPath)
	fmt.Fprintf(&b, "# Working Units: %s\n", opts.WorkingUnits)
	fmt.Fprintf(&b, "# Library Path: %s\n", opts.LibraryPath)
	b.WriteString("# Add your Blender scene setup here...\n")
	return b.String()
}
