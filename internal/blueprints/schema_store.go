package blueprints

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)

// SchemaStore resolves blueprint names to schema documents.
type SchemaStore interface {
	Load(name string) (Schema, error)
}

// FileSchemaStore reads <dir>/<name>.json.
type FileSchemaStore struct {
	Dir string
}

// NewFileSchemaStore returns a store rooted at dir.
func NewFileSchemaStore(dir string) *FileSchemaStore {
	return &FileSchemaStore{Dir: dir}
}

// Load reads the schema document for name.
func (s *FileSchemaStore) Load(name string) (Schema, error) {
	name = strings.TrimSpace(name)
	if !namePattern.MatchString(name) {
		return Schema{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	path := filepath.Join(s.Dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Schema{}, SchemaNotFoundError{Name: name, Path: path}
		}
		return Schema{}, fmt.Errorf("read schema %s: %w", path, err)
	}
	return Schema{Name: name, Path: path, Document: data}, nil
}

// Names lists the blueprint names available in the store, sorted.
func (s *FileSchemaStore) Names() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir %s: %w", s.Dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		if namePattern.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
