package rename

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
)

// propertyLayout formats time-valued properties.
const propertyLayout = "2006-01-02_15-04-05"

// Property names a file attribute that can be added to a name.
type Property string

const (
	PropName      Property = "name"
	PropSize      Property = "size"
	PropCreated   Property = "created"
	PropModified  Property = "modified"
	PropFileType  Property = "type"
	PropDateTaken Property = "taken"
)

// ParseProperty validates a property name.
func ParseProperty(s string) (Property, error) {
	switch p := Property(strings.ToLower(strings.TrimSpace(s))); p {
	case PropName, PropSize, PropCreated, PropModified, PropFileType, PropDateTaken:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown property %q (name, size, created, modified, type, taken)", ErrInvalidTransform, s)
}

// Position places a property before or after the name.
type Position string

const (
	Prefix Position = "prefix"
	Suffix Position = "suffix"
)

// ParsePosition validates a position name.
func ParsePosition(s string) (Position, error) {
	switch p := Position(strings.ToLower(strings.TrimSpace(s))); p {
	case Prefix, Suffix:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown position %q (prefix, suffix)", ErrInvalidTransform, s)
}

// AddProperty joins a file property to the name with an underscore.
type AddProperty struct {
	Property Property
	Position Position
}

func (t AddProperty) Describe() string { return "add file property" }

func (t AddProperty) NewName(f File, _ int) (string, error) {
	value, err := ReadProperty(f, t.Property)
	if err != nil {
		return "", err
	}
	if t.Position == Suffix {
		return f.Name + "_" + value, nil
	}
	return value + "_" + f.Name, nil
}

// ReadProperty returns the filename-safe value of prop for f.
func ReadProperty(f File, prop Property) (string, error) {
	info := f.Info
	if info == nil {
		var err error
		if info, err = os.Stat(f.Path); err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", f.Path, err)
		}
	}

	switch prop {
	case PropName:
		return f.Name, nil
	case PropSize:
		return strconv.FormatInt(info.Size(), 10), nil
	case PropCreated:
		return createdTime(info).Format(propertyLayout), nil
	case PropModified:
		return info.ModTime().Format(propertyLayout), nil
	case PropFileType:
		return fileType(f.Path)
	case PropDateTaken:
		taken, err := dateTaken(f.Path)
		if err != nil {
			return "", err
		}
		return taken.Format(propertyLayout), nil
	default:
		return "", fmt.Errorf("%w: unknown property %q", ErrInvalidTransform, prop)
	}
}

// fileType sniffs the MIME type, e.g. "image-png".
func fileType(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to detect type of %s: %w", path, err)
	}
	essence, _, _ := strings.Cut(mtype.String(), ";")
	return strings.ReplaceAll(strings.TrimSpace(essence), "/", "-"), nil
}

func dateTaken(path string) (time.Time, error) {
	file, err := os.Open(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	x, err := exif.Decode(file)
	if err != nil {
		return time.Time{}, fmt.Errorf("no EXIF data in %s: %w", path, err)
	}
	taken, err := x.DateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("no capture date in %s: %w", path, err)
	}
	return taken, nil
}
