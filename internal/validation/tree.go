package validation

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Node is one entry of a status tree. Directories carry no status.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	IsDir    bool    `json:"isDir"`
	Status   Status  `json:"status,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// ListDirs returns every directory below root as a slash-separated relative
// path, including empty ones. Symlinked directories are not followed.
func ListDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return nil
		}
		if !d.IsDir() || p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		dirs = append(dirs, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list directories of %s: %w", root, err)
	}
	return dirs, nil
}

// BuildTree arranges a comparison result into a directory tree rooted at
// name. Deleted files hang off their former parent so they stay visible.
// dirs adds directories that hold no files, as returned by ListDirs.
func BuildTree(name string, result *Result, dirs []string) *Node {
	root := &Node{Name: name, IsDir: true}
	nodes := map[string]*Node{"": root}

	var dirFor func(rel string) *Node
	dirFor = func(rel string) *Node {
		if n, ok := nodes[rel]; ok {
			return n
		}
		parent := dirFor(parentDir(rel))
		n := &Node{Name: path.Base(rel), Path: rel, IsDir: true}
		parent.Children = append(parent.Children, n)
		nodes[rel] = n
		return n
	}

	for _, d := range dirs {
		dirFor(d)
	}
	for _, f := range result.Files {
		parent := dirFor(parentDir(f.Path))
		parent.Children = append(parent.Children, &Node{
			Name:   path.Base(f.Path),
			Path:   f.Path,
			Status: f.Status,
		})
	}

	sortTree(root)
	return root
}

func parentDir(rel string) string {
	i := strings.LastIndex(rel, "/")
	if i < 0 {
		return ""
	}
	return rel[:i]
}

// sortTree orders directories before files, then by name.
func sortTree(n *Node) {
	sort.Slice(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})
	for _, c := range n.Children {
		if c.IsDir {
			sortTree(c)
		}
	}
}

// Walk visits every node depth-first with its depth below the root.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	var visit func(node *Node, depth int)
	visit = func(node *Node, depth int) {
		fn(node, depth)
		for _, c := range node.Children {
			visit(c, depth+1)
		}
	}
	visit(n, 0)
}
