// Package docs renders a project's Markdown documentation from its metadata.
package docs

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/elilab/mediakit/internal/fsops"
	"github.com/elilab/mediakit/internal/metadata"
)

// FileName is the generated document's name inside the project directory.
const FileName = "project_documentation.md"

// ErrInvalidChoice is returned for a status or license outside the choices.
var ErrInvalidChoice = errors.New("invalid choice")

var (
	// StatusChoices are the accepted project statuses.
	StatusChoices = []string{"In Development", "Pre-Production", "Production", "Ready"}

	// LicenseChoices are the accepted licenses.
	LicenseChoices = []string{"MIT", "GNU GPL v3", "Apache License 2.0", "Other"}
)

const namePlaceholder = "[Project Name Placeholder]"

var docTemplate = template.Must(template.New("doc").Funcs(template.FuncMap{
	"badge":  badge,
	"bullet": bulletList,
	"crew":   crewList,
}).Parse(`# {{.ProjectName}}

[![Project Status](https://img.shields.io/badge/status-{{badge .ProjectStatus}}-yellow)](https://shields.io/)
[![License](https://img.shields.io/badge/license-{{badge .License}}-blue.svg)](LICENSE)

## Synopsis

{{.ProjectDescription}}

## Project Code:

{{.ProjectCode}}

## Client:

{{.Client}}

## Pipeline Version:

{{.PipelineVersion}}

## Lead Artist:

{{.LeadArtist}}

## Key Themes

{{bullet .KeyThemes}}

## Crew

{{crew .Crew}}

## Contact

{{.Contact}}

## Acknowledgements

{{.Acknowledgements}}
`))

func badge(s string) string {
	return strings.ReplaceAll(s, " ", "%20")
}

func bulletList(commaSeparated string) string {
	var lines []string
	for _, item := range strings.Split(commaSeparated, ",") {
		if item = strings.TrimSpace(item); item != "" {
			lines = append(lines, "* "+item)
		}
	}
	return strings.Join(lines, "\n")
}

func crewList(text string) string {
	var lines []string
	for _, member := range strings.Split(text, "\n") {
		if member = strings.TrimSpace(member); member != "" {
			lines = append(lines, "* **"+member+"**")
		}
	}
	return strings.Join(lines, "\n")
}

// Overrides replace metadata fields for one rendering. Empty values keep the
// record's value.
type Overrides struct {
	Status           string
	License          string
	Synopsis         string
	KeyThemes        string
	Contact          string
	Crew             string
	Acknowledgements string
}

// ValidateChoice checks value is one of choices, ignoring case. It returns
// the canonical spelling.
func ValidateChoice(kind, value string, choices []string) (string, error) {
	for _, c := range choices {
		if strings.EqualFold(c, strings.TrimSpace(value)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s %q (choose from %s)", ErrInvalidChoice, kind, value, strings.Join(choices, ", "))
}

// Merge applies overrides and defaults to a copy of rec.
func Merge(rec metadata.Record, o Overrides) (metadata.Record, error) {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&rec.ProjectStatus, o.Status)
	set(&rec.License, o.License)
	set(&rec.ProjectDescription, o.Synopsis)
	set(&rec.KeyThemes, o.KeyThemes)
	set(&rec.Contact, o.Contact)
	set(&rec.Crew, o.Crew)
	set(&rec.Acknowledgements, o.Acknowledgements)

	if rec.ProjectName == "" {
		rec.ProjectName = namePlaceholder
	}
	if rec.ProjectStatus == "" {
		rec.ProjectStatus = StatusChoices[0]
	}
	if rec.License == "" {
		rec.License = LicenseChoices[0]
	}

	var err error
	if rec.ProjectStatus, err = ValidateChoice("status", rec.ProjectStatus, StatusChoices); err != nil {
		return rec, err
	}
	if rec.License, err = ValidateChoice("license", rec.License, LicenseChoices); err != nil {
		return rec, err
	}
	return rec, nil
}

// Render produces the Markdown document for rec.
func Render(rec metadata.Record) (string, error) {
	var buf bytes.Buffer
	if err := docTemplate.Execute(&buf, rec); err != nil {
		return "", fmt.Errorf("failed to render documentation: %w", err)
	}
	return buf.String(), nil
}

// Generate renders rec with overrides applied and writes it into dir.
// It returns the written path and the document.
func Generate(fsys fsops.FS, dir string, rec metadata.Record, o Overrides) (string, string, error) {
	merged, err := Merge(rec, o)
	if err != nil {
		return "", "", err
	}
	doc, err := Render(merged)
	if err != nil {
		return "", "", err
	}
	path := filepath.Join(dir, FileName)
	if err := fsys.AtomicWrite(path, []byte(doc), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write documentation: %w", err)
	}
	return path, doc, nil
}
