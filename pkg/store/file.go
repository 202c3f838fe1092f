package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"play-extract/pkg/domain"
)

// ErrInvalidName is returned for names that are not a single path element
var ErrInvalidName = errors.New("invalid record name")

// FileStore writes one JSON file per play into a directory.
type FileStore struct {
	dir string
	ext string
}

// NewFileStore creates a file store. An empty ext uses DefaultExt.
func NewFileStore(dir, ext string) *FileStore {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = DefaultExt
	}
	return &FileStore{dir: dir, ext: ext}
}

// Dir returns the output directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file path for a record name
func (s *FileStore) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name+"."+s.ext), nil
}

// SaveRecord writes the record's transcript to <dir>/<name>.<ext>, creating the
// directory if needed and replacing any existing file.
func (s *FileStore) SaveRecord(_ context.Context, record *domain.PlayRecord) (string, error) {
	if record == nil {
		return "", errors.New("record is nil")
	}
	path, err := s.Path(record.Name)
	if err != nil {
		return "", err
	}

	data, err := EncodeTranscript(record.Transcript)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// List returns the record names present in the directory, sorted
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read output directory: %w", err)
	}

	suffix := "." + s.ext
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), suffix))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the transcript stored under name
func (s *FileStore) Load(name string) (*domain.Transcript, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record %s: %w", name, err)
	}
	return DecodeTranscript(data)
}

// writeFileAtomic replaces path through a temp file in the same directory
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".playextract-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
