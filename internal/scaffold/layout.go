// Package scaffold creates project folder structures.
//
// A Layout names a project and its characters, locations and assets;
// Create turns it into the studio's standard directory tree. CreateDCC sets
// up a minimal Blender project folder with a stub scene file.
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrValidation indicates a layout or project option is unusable.
var ErrValidation = errors.New("validation failed")

// Layout describes a project tree. Locations and assets map a folder name to
// its subfolders.
type Layout struct {
	Name       string              `yaml:"name" json:"name"`
	Characters []string            `yaml:"characters,omitempty" json:"characters,omitempty"`
	Locations  map[string][]string `yaml:"locations,omitempty" json:"locations,omitempty"`
	Assets     map[string][]string `yaml:"assets,omitempty" json:"assets,omitempty"`
}

// LoadLayout reads a YAML layout file.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var l Layout
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to parse layout %s: %w", path, err)
	}
	return &l, nil
}

// ParseGroup parses a flag value of the form "forest=clearing,river".
// Subfolders are optional.
func ParseGroup(s string) (name string, subfolders []string, err error) {
	name, rest, _ := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("%w: empty folder name in %q", ErrValidation, s)
	}
	for _, sub := range strings.Split(rest, ",") {
		if sub = strings.TrimSpace(sub); sub != "" {
			subfolders = append(subfolders, sub)
		}
	}
	return name, subfolders, nil
}

// AddGroup merges subfolders into a location or asset map.
func AddGroup(m map[string][]string, name string, subfolders []string) map[string][]string {
	if m == nil {
		m = map[string][]string{}
	}
	m[name] = append(m[name], subfolders...)
	return m
}

// Dirs returns the directories the layout produces, relative to the
// project's parent directory, parents before children. A folder named twice
// (a repeated character or subfolder) is listed once.
func (l *Layout) Dirs() []string {
	n := l.Name
	core := n
	characters := core + "/" + n + "_characters"
	locations := core + "/" + n + "_locations"
	assets := core + "/" + n + "_assets"

	dirs := []string{
		core,
		characters,
		locations,
		assets,
		core + "/" + n + "_scripts",
		core + "/" + n + "_misc",
	}
	for _, c := range l.Characters {
		dirs = append(dirs, characters+"/"+n+"_"+c)
	}
	dirs = appendGroups(dirs, n, locations, l.Locations)
	dirs = appendGroups(dirs, n, assets, l.Assets)

	seen := make(map[string]bool, len(dirs))
	unique := dirs[:0]
	for _, d := range dirs {
		if !seen[d] {
			seen[d] = true
			unique = append(unique, d)
		}
	}
	return unique
}

func appendGroups(dirs []string, project, parent string, groups map[string][]string) []string {
	for _, name := range sortedKeys(groups) {
		dir := parent + "/" + project + "_" + name
		dirs = append(dirs, dir)
		for _, sub := range groups[name] {
			dirs = append(dirs, dir+"/"+project+"_"+sub)
		}
	}
	return dirs
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
