package sources

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoSources is returned when a listing yields no locators
var ErrNoSources = errors.New("no sources found")

// FileLister reads locators from a file (one per line, # comments)
type FileLister struct{}

// NewFileLister creates a new file lister
func NewFileLister() *FileLister {
	return &FileLister{}
}

// List reads the file at filePath
func (l *FileLister) List(_ context.Context, filePath string) ([]Source, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var out []Source
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// tolerate lists pasted from JSON or CSV
		line = strings.Trim(strings.TrimRight(line, ", \t"), `"`)
		if line == "" {
			continue
		}

		out = append(out, Source{Location: line})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file at line %d: %w", lineNum, err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w in file %s", ErrNoSources, filePath)
	}

	return out, nil
}
