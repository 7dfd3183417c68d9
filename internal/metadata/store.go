package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elilab/mediakit/internal/fsops"
)

// DefaultFileName is where a project's metadata lives.
const DefaultFileName = "project_metadata.json"

// Store reads and writes metadata records in project directories.
type Store struct {
	fs       fsops.FS
	fileName string
}

// NewStore creates a Store. An empty fileName uses DefaultFileName.
func NewStore(fsys fsops.FS, fileName string) *Store {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &Store{fs: fsys, fileName: fileName}
}

// Path returns the metadata file location for dir.
func (s *Store) Path(dir string) string {
	return filepath.Join(dir, s.fileName)
}

// Exists reports whether dir has a metadata file.
func (s *Store) Exists(dir string) (bool, error) {
	return s.fs.Exists(s.Path(dir))
}

// Load reads the record in dir.
func (s *Store) Load(dir string) (*Record, error) {
	data, err := s.fs.ReadFile(s.Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, s.Path(dir))
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse metadata %s: %w", s.Path(dir), err)
	}
	return &rec, nil
}

// Save validates rec and writes it to dir, creating dir if needed.
func (s *Store) Save(dir string, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	data = append(data, '\n')
	if err := s.fs.AtomicWrite(s.Path(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	return nil
}

// Init writes rec only when dir has no record yet.
func (s *Store) Init(dir string, rec *Record) error {
	exists, err := s.Exists(dir)
	if err != nil {
		return fmt.Errorf("failed to check metadata: %w", err)
	}
	if exists {
		return fmt.Errorf("%s: %w", s.Path(dir), fsops.ErrExists)
	}
	return s.Save(dir, rec)
}
