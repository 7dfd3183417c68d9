// Package launcher lists mediakit's tools and runs several of them side by
// side as child processes, stopping them together.
package launcher

import "strings"

// Tool is one launchable tool.
type Tool struct {
	Name        string   `json:"name"`
	Args        []string `json:"args"`
	Description string   `json:"description"`
}

// Category groups tools the way the launcher presents them.
type Category struct {
	Name  string `json:"name"`
	Tools []Tool `json:"tools"`
}

// Catalog returns the tool catalogue.
func Catalog() []Category {
	return []Category{
		{
			Name: "Project Structure Management",
			Tools: []Tool{
				{Name: "Advanced Template System", Args: []string{"scaffold"}, Description: "Create a project folder structure"},
				{Name: "Project Metadata Integration", Args: []string{"metadata"}, Description: "Read and write project metadata"},
				{Name: "Project Documentation Generator", Args: []string{"docs"}, Description: "Render project documentation"},
			},
		},
		{
			Name: "Project Automation",
			Tools: []Tool{
				{Name: "Texture Batch Converter", Args: []string{"texture", "convert"}, Description: "Convert textures to PNG"},
				{Name: "Texture Batch Optimising Tool", Args: []string{"texture", "optimize"}, Description: "Compress PNGs with pngquant"},
				{Name: "Custom File Renaming", Args: []string{"rename"}, Description: "Batch rename files"},
			},
		},
		{
			Name: "Data Management",
			Tools: []Tool{
				{Name: "File Validation", Args: []string{"validate"}, Description: "Chip and compare directory snapshots"},
				{Name: "Project Validation", Args: []string{"provision"}, Description: "Seed leaf folders with scene templates"},
			},
		},
		{
			Name: "Control",
			Tools: []Tool{
				{Name: "Automated Task Management & Reporting", Args: []string{"task"}, Description: "Assign, track and report tasks"},
				{Name: "Blender Production Support", Args: []string{"scaffold", "dcc"}, Description: "Create a Blender project folder"},
			},
		},
	}
}

// Lookup finds a tool by display name or command, ignoring case.
func Lookup(name string) (Tool, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Catalog() {
		for _, t := range c.Tools {
			if strings.EqualFold(t.Name, name) || strings.EqualFold(strings.Join(t.Args, " "), name) {
				return t, true
			}
		}
	}
	return Tool{}, false
}
