// Package provision seeds the leaf folders of a project tree with scene
// templates chosen by the top-level category folder they sit under.
package provision

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/elilab/mediakit/internal/fsops"
	"github.com/elilab/mediakit/internal/planner"
)

// OutputExt is the extension of seeded scene files.
const OutputExt = ".blend"

// TemplateMap maps a category folder name to a template file name.
type TemplateMap map[string]string

// DefaultTemplateMap returns the studio's standard categories for prefix,
// e.g. "eli_lab territory_assets" -> "Asset.blend".
func DefaultTemplateMap(prefix string) TemplateMap {
	return TemplateMap{
		prefix + "_assets":     "Asset.blend",
		prefix + "_characters": "Character.blend",
		prefix + "_locations":  "Location.blend",
	}
}

// LoadTemplateMap reads a YAML mapping of folder name to template file.
func LoadTemplateMap(path string) (TemplateMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template map: %w", err)
	}
	m := TemplateMap{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse template map %s: %w", path, err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("template map %s is empty", path)
	}
	return m, nil
}

// Outcome is what happened to one leaf folder.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// LeafResult reports one leaf folder.
type LeafResult struct {
	Leaf     string  `json:"leaf"`
	Category string  `json:"category,omitempty"`
	Template string  `json:"template,omitempty"`
	Output   string  `json:"output,omitempty"`
	Outcome  Outcome `json:"outcome"`
	Reason   string  `json:"reason,omitempty"`
}

// Report lists the results for every leaf, in path order.
type Report struct {
	Root    string          `json:"root"`
	Results []LeafResult    `json:"results"`
	Counts  map[Outcome]int `json:"counts"`
}

// ProgressFunc is called after each leaf.
type ProgressFunc func(done, total int, result LeafResult)

// Provisioner copies templates into leaf folders.
type Provisioner struct {
	fs           fsops.FS
	templatesDir string
	templates    TemplateMap
	force        bool
	logger       zerolog.Logger
}

// New creates a Provisioner. With force, existing scene files are replaced.
func New(fsys fsops.FS, templatesDir string, templates TemplateMap, force bool, logger zerolog.Logger) *Provisioner {
	return &Provisioner{
		fs:           fsys,
		templatesDir: templatesDir,
		templates:    templates,
		force:        force,
		logger:       logger,
	}
}

// Leaves returns every directory under root with no subdirectories, sorted.
// Hidden directories are ignored.
func Leaves(root string) ([]string, error) {
	var leaves []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
				return nil
			}
		}
		leaves = append(leaves, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(leaves)
	return leaves, nil
}

// SceneName returns the scene file name for a leaf folder: the folder name
// lower-cased with spaces replaced by underscores.
func SceneName(leaf string) string {
	return strings.ReplaceAll(strings.ToLower(filepath.Base(leaf)), " ", "_") + OutputExt
}

// category returns the outermost ancestor folder of leaf that names a template
// category. Folders above root count too, so provisioning a subfolder of
// "<studio>_assets" still seeds its leaves.
func (p *Provisioner) category(root, leaf string) (string, bool) {
	if rel, err := filepath.Rel(root, leaf); err != nil || rel == "." {
		return "", false
	}
	abs, err := filepath.Abs(leaf)
	if err != nil {
		return "", false
	}
	var ancestors []string
	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		if base := filepath.Base(dir); base != string(filepath.Separator) && base != "." {
			ancestors = append(ancestors, base)
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}
	for i := len(ancestors) - 1; i >= 0; i-- {
		if _, ok := p.templates[ancestors[i]]; ok {
			return ancestors[i], true
		}
	}
	return "", false
}

// Run provisions every leaf folder under root. Leaves outside any category,
// leaves whose template is missing and leaves that already have their scene
// file are skipped. A failed copy is reported and the run continues.
func (p *Provisioner) Run(ctx context.Context, root string, progress ProgressFunc) (*Report, error) {
	for category, template := range p.templates {
		if err := p.fs.ValidateRelPath(template); err != nil {
			return nil, fmt.Errorf("template for %s: %w", category, err)
		}
	}
	leaves, err := Leaves(root)
	if err != nil {
		return nil, err
	}

	checker := planner.NewConflictChecker(p.fs, p.force)
	report := &Report{Root: root, Results: make([]LeafResult, 0, len(leaves)), Counts: map[Outcome]int{}}
	for i, leaf := range leaves {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := p.provisionLeaf(checker, root, leaf)
		report.Results = append(report.Results, res)
		report.Counts[res.Outcome]++

		event := p.logger.Debug()
		if res.Outcome == OutcomeFailed {
			event = p.logger.Warn()
		}
		event.Str("leaf", leaf).Str("outcome", string(res.Outcome)).Str("reason", res.Reason).Msg("leaf processed")

		if progress != nil {
			progress(i+1, len(leaves), res)
		}
	}

	p.logger.Info().
		Str("root", root).
		Int("created", report.Counts[OutcomeCreated]).
		Int("skipped", report.Counts[OutcomeSkipped]).
		Int("failed", report.Counts[OutcomeFailed]).
		Msg("provisioning finished")
	return report, nil
}

func (p *Provisioner) provisionLeaf(checker *planner.ConflictChecker, root, leaf string) LeafResult {
	res := LeafResult{Leaf: leaf}

	category, ok := p.category(root, leaf)
	if !ok {
		res.Outcome = OutcomeSkipped
		res.Reason = "no matching category folder"
		return res
	}
	res.Category = category
	res.Template = filepath.Join(p.templatesDir, p.templates[category])

	info, err := p.fs.Stat(res.Template)
	if err != nil || info.IsDir() {
		res.Outcome = OutcomeSkipped
		res.Reason = "template not found: " + res.Template
		return res
	}

	res.Output = filepath.Join(leaf, SceneName(leaf))
	if c := checker.CheckPath(res.Output, planner.KindFile, ""); c != nil {
		res.Outcome = OutcomeSkipped
		res.Reason = c.Reason
		return res
	}

	if err := p.fs.Copy(res.Template, res.Output); err != nil {
		res.Outcome = OutcomeFailed
		res.Reason = err.Error()
		return res
	}
	res.Outcome = OutcomeCreated
	return res
}
