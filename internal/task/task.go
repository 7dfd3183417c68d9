// Package task keeps production tasks as small "key: value" text files in a
// project directory, one file per task.
package task

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elilab/mediakit/internal/clock"
)

const (
	filePrefix = "task for "
	fileSuffix = ".txt"

	completedPrefix = "Completed on "
)

var (
	// ErrNotFound is returned when no task file has the requested name.
	ErrNotFound = errors.New("task not found")

	// ErrValidation is returned for a task with missing or malformed fields.
	ErrValidation = errors.New("invalid task")
)

// Status values offered when assigning or editing a task.
const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusBlocked    = "Blocked"
	StatusCompleted  = "Completed"
)

// StatusChoices lists the selectable statuses.
var StatusChoices = []string{StatusNotStarted, StatusInProgress, StatusBlocked, StatusCompleted}

// field keys, in file order
const (
	keyName        = "task name"
	keyArtist      = "assigned artist"
	keyDueDate     = "due date"
	keyStatus      = "status"
	keyDescription = "description"
	keyPolls       = "polls"
	keyAssets      = "assets"
	keyCharacters  = "characters"
	keyLocations   = "locations"
)

// Task is one task record.
type Task struct {
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Polls       string `json:"polls"`
	Assets      bool   `json:"assets"`
	Characters  bool   `json:"characters"`
	Locations   bool   `json:"locations"`
}

// FileName returns the file a task named name is stored in.
func FileName(name string) string {
	return filePrefix + name + fileSuffix
}

// IsTaskFile reports whether a directory entry name is a task file.
func IsTaskFile(name string) bool {
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix)
}

// Parse reads a task file. Lines without a colon are ignored; each other line
// is split at its first colon.
func Parse(data []byte) *Task {
	fields := map[string]string{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return &Task{
		Name:        fields[keyName],
		Artist:      fields[keyArtist],
		DueDate:     fields[keyDueDate],
		Status:      fields[keyStatus],
		Description: fields[keyDescription],
		Polls:       fields[keyPolls],
		Assets:      fields[keyAssets] == "True",
		Characters:  fields[keyCharacters] == "True",
		Locations:   fields[keyLocations] == "True",
	}
}

// Format renders the task file. Newlines inside values become spaces so
// the file always parses back to the same task.
func (t *Task) Format() []byte {
	var b bytes.Buffer
	line := func(key, value string) {
		fmt.Fprintf(&b, "%s: %s\n", key, flatten(value))
	}
	line(keyName, t.Name)
	line(keyArtist, t.Artist)
	line(keyDueDate, t.DueDate)
	line(keyStatus, t.Status)
	line(keyDescription, t.Description)
	line(keyPolls, t.Polls)
	line(keyAssets, pyBool(t.Assets))
	line(keyCharacters, pyBool(t.Characters))
	line(keyLocations, pyBool(t.Locations))
	return b.Bytes()
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// Validate checks the required fields and the date and status formats.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.Artist) == "" {
		return fmt.Errorf("%w: task name and assigned artist are required", ErrValidation)
	}
	if t.DueDate != "" {
		if _, err := clock.ParseDate(t.DueDate); err != nil {
			return fmt.Errorf("%w: due date %q must be YYYY-MM-DD", ErrValidation, t.DueDate)
		}
	}
	if t.Status == "" {
		return nil
	}
	for _, s := range StatusChoices {
		if t.Status == s {
			return nil
		}
	}
	if _, ok := CompletedOn(t.Status); ok {
		return nil
	}
	return fmt.Errorf("%w: unknown status %q (%s)", ErrValidation, t.Status, strings.Join(StatusChoices, ", "))
}

// CompletedOn parses a "Completed on YYYY-MM-DD" status.
func CompletedOn(status string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(status, completedPrefix)
	if !ok {
		return time.Time{}, false
	}
	day, err := clock.ParseDate(strings.TrimSpace(rest))
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// CompletedStatus builds the status recorded when a task is completed on day.
func CompletedStatus(day string) string {
	return completedPrefix + day
}
