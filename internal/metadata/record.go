// Package metadata stores a project's descriptive record as JSON next to the
// project's files.
package metadata

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a directory has no metadata file.
	ErrNotFound = errors.New("project metadata not found")

	// ErrValidation is returned when a record is missing required fields.
	ErrValidation = errors.New("invalid project metadata")

	// ErrUnknownField is returned by Set for keys the record does not have.
	ErrUnknownField = errors.New("unknown metadata field")
)

// Record is the project metadata document. The first six fields are always
// written; the rest are kept when set.
type Record struct {
	ProjectName        string `json:"project_name"`
	ProjectCode        string `json:"project_code"`
	Client             string `json:"client"`
	PipelineVersion    string `json:"pipeline_version"`
	LeadArtist         string `json:"lead_artist"`
	ProjectDescription string `json:"project_description"`

	ProjectStatus    string `json:"project_status,omitempty"`
	License          string `json:"license,omitempty"`
	KeyThemes        string `json:"key_themes,omitempty"`
	Contact          string `json:"contact,omitempty"`
	Crew             string `json:"crew,omitempty"`
	Acknowledgements string `json:"acknowledgements,omitempty"`
}

// Validate checks the required fields.
func (r *Record) Validate() error {
	var missing []string
	if strings.TrimSpace(r.ProjectName) == "" {
		missing = append(missing, "project_name")
	}
	if strings.TrimSpace(r.ProjectCode) == "" {
		missing = append(missing, "project_code")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, " and "))
	}
	return nil
}

func (r *Record) fields() map[string]*string {
	return map[string]*string{
		"project_name":        &r.ProjectName,
		"project_code":        &r.ProjectCode,
		"client":              &r.Client,
		"pipeline_version":    &r.PipelineVersion,
		"lead_artist":         &r.LeadArtist,
		"project_description": &r.ProjectDescription,
		"project_status":      &r.ProjectStatus,
		"license":             &r.License,
		"key_themes":          &r.KeyThemes,
		"contact":             &r.Contact,
		"crew":                &r.Crew,
		"acknowledgements":    &r.Acknowledgements,
	}
}

// Set assigns a field by its JSON key.
func (r *Record) Set(key, value string) error {
	ptr, ok := r.fields()[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("%w: %q (known: %s)", ErrUnknownField, key, strings.Join(FieldNames(), ", "))
	}
	*ptr = value
	return nil
}

// Get returns a field by its JSON key.
func (r *Record) Get(key string) (string, bool) {
	ptr, ok := r.fields()[key]
	if !ok {
		return "", false
	}
	return *ptr, true
}

// FieldNames returns every settable key, sorted.
func FieldNames() []string {
	var r Record
	names := make([]string, 0, 12)
	for k := range r.fields() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
