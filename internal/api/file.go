package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSource reads results from a local JSON file.
type FileSource struct {
	Path string
}

func (f FileSource) Describe() string {
	return f.Path
}

func (f FileSource) Fetch(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	return LoadFile(f.Path)
}

// LoadFile reads and parses a results file. The document is named after
// the file's base name.
func LoadFile(path string) (Document, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("%w %s: %w", ErrCouldNotLoad, path, err)
	}
	return parse(filepath.Base(path), body)
}
