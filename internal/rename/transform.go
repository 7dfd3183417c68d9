package rename

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/lestrrat-go/strftime"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultDateTimeFormat is the strftime pattern used for date/time prefixes.
const DefaultDateTimeFormat = "%Y-%m-%d_%H-%M-%S"

// ErrInvalidTransform indicates a transform's parameters are unusable.
var ErrInvalidTransform = errors.New("invalid transform")

// Transform maps one file to its new base name. index is the file's
// position in the batch.
type Transform interface {
	Describe() string
	NewName(f File, index int) (string, error)
}

// DateTimePrefix prepends a formatted timestamp: "<time>_<name>".
type DateTimePrefix struct {
	Format string
	Now    time.Time
}

func (t DateTimePrefix) Describe() string { return "add date/time" }

func (t DateTimePrefix) NewName(f File, _ int) (string, error) {
	pattern := t.Format
	if pattern == "" {
		pattern = DefaultDateTimeFormat
	}
	stamp, err := strftime.Format(pattern, t.Now)
	if err != nil {
		return "", fmt.Errorf("%w: date format %q: %v", ErrInvalidTransform, pattern, err)
	}
	return stamp + "_" + f.Name, nil
}

// Replace substitutes every occurrence of Find with With.
type Replace struct {
	Find string
	With string
}

func (t Replace) Describe() string { return "replace text" }

func (t Replace) NewName(f File, _ int) (string, error) {
	if t.Find == "" {
		return "", fmt.Errorf("%w: replace needs text to find", ErrInvalidTransform)
	}
	return strings.ReplaceAll(f.Name, t.Find, t.With), nil
}

// Insert puts Text before the rune at Position.
type Insert struct {
	Text     string
	Position int
}

func (t Insert) Describe() string { return "insert text" }

func (t Insert) NewName(f File, _ int) (string, error) {
	runes := []rune(f.Name)
	if t.Position < 0 || t.Position > len(runes) {
		return "", fmt.Errorf("%w: position %d for %q must be between 0 and %d",
			ErrInvalidTransform, t.Position, f.Name, len(runes))
	}
	return string(runes[:t.Position]) + t.Text + string(runes[t.Position:]), nil
}

// CaseMode selects a case conversion.
type CaseMode string

const (
	CaseUpper    CaseMode = "upper"
	CaseLower    CaseMode = "lower"
	CaseTitle    CaseMode = "title"
	CaseSentence CaseMode = "sentence"
)

// ParseCaseMode validates a case mode name.
func ParseCaseMode(s string) (CaseMode, error) {
	switch m := CaseMode(strings.ToLower(strings.TrimSpace(s))); m {
	case CaseUpper, CaseLower, CaseTitle, CaseSentence:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown case %q (upper, lower, title, sentence)", ErrInvalidTransform, s)
}

// ConvertCase rewrites the stem's case. The extension is kept as is.
type ConvertCase struct {
	Mode CaseMode
}

func (t ConvertCase) Describe() string { return "convert case" }

func (t ConvertCase) NewName(f File, _ int) (string, error) {
	stem, ext := SplitExt(f.Name)
	switch t.Mode {
	case CaseUpper:
		stem = cases.Upper(language.Und).String(stem)
	case CaseLower:
		stem = cases.Lower(language.Und).String(stem)
	case CaseTitle:
		stem = titleCase(stem)
	case CaseSentence:
		stem = sentenceCase(stem)
	default:
		return "", fmt.Errorf("%w: unknown case %q", ErrInvalidTransform, t.Mode)
	}
	return stem + ext, nil
}

// titleCase starts a word after any non-letter, so "shot01a_fx" becomes
// "Shot01A_Fx".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inWord := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			inWord = false
		case inWord:
			r = unicode.ToLower(r)
		default:
			r = unicode.ToTitle(r)
			inWord = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

func sentenceCase(s string) string {
	s = cases.Lower(language.Und).String(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// AutoNumber prepends a zero-padded counter: "<n>_<name>".
type AutoNumber struct {
	Start   int
	Step    int
	Padding int
}

func (t AutoNumber) Describe() string { return "add auto-number" }

func (t AutoNumber) NewName(f File, index int) (string, error) {
	if t.Padding < 0 {
		return "", fmt.Errorf("%w: padding must not be negative", ErrInvalidTransform)
	}
	n := t.Start + index*t.Step
	return padNumber(n, t.Padding) + "_" + f.Name, nil
}

func padNumber(n, width int) string {
	digits := strconv.Itoa(n)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
		width--
	}
	if len(digits) < width {
		digits = strings.Repeat("0", width-len(digits)) + digits
	}
	if neg {
		return "-" + digits
	}
	return digits
}

// RemoveExt strips the final extension.
type RemoveExt struct{}

func (t RemoveExt) Describe() string { return "remove extension" }

func (t RemoveExt) NewName(f File, _ int) (string, error) {
	stem, _ := SplitExt(f.Name)
	return stem, nil
}

// ChangeExt replaces the final extension, adding one when there is none.
type ChangeExt struct {
	Ext string
}

func (t ChangeExt) Describe() string { return "change extension" }

func (t ChangeExt) NewName(f File, _ int) (string, error) {
	ext := strings.TrimSpace(t.Ext)
	if ext == "" || ext == "." {
		return "", fmt.Errorf("%w: new extension is empty", ErrInvalidTransform)
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	stem, _ := SplitExt(f.Name)
	return stem + ext, nil
}

// SplitExt splits name into stem and final extension. Leading dots belong to
// the stem, so ".hidden" has no extension.
func SplitExt(name string) (stem, ext string) {
	trimmed := strings.TrimLeft(name, ".")
	ext = filepath.Ext(trimmed)
	return name[:len(name)-len(ext)], ext
}
