package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/object"
)

// Store implements object.Store on the local filesystem, laying objects out as baseDir/bucket/key.
type Store struct {
	baseDir string
}

// New creates a local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.path(uri)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("open object uri=%s: %w", uri, err)
	}
	return f, nil
}

// Put writes the reader to disk at the path mapped from uri.
func (s *Store) Put(ctx context.Context, uri string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	_ = contentType
	fullPath, err := s.path(uri)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		return 0, fmt.Errorf("write body: %w", err)
	}
	return written, nil
}

// List walks baseDir/bucket and returns the URIs whose keys start with the prefix key.
func (s *Store) List(ctx context.Context, prefixURI string) ([]string, error) {
	loc, err := object.ParseURI(prefixURI)
	if err != nil {
		return nil, err
	}
	root := filepath.Join(s.baseDir, loc.Bucket)
	var out []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, loc.Key) {
			out = append(out, object.Location{Bucket: loc.Bucket, Key: key}.URI())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects uri=%s: %w", prefixURI, err)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) path(uri string) (string, error) {
	loc, err := object.ParseURI(uri)
	if err != nil {
		return "", err
	}
	if loc.Key == "" {
		return "", fmt.Errorf("%w: %q has no key", object.ErrInvalidURI, uri)
	}
	clean := filepath.Clean(filepath.Join(loc.Bucket, filepath.FromSlash(loc.Key)))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.baseDir, clean), nil
}

var (
	_ object.Store  = (*Store)(nil)
	_ object.Lister = (*Store)(nil)
)
