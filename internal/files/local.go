package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalSource reads the file from a directory on disk.
type LocalSource struct {
	dir  string
	name string
}

// Ensure LocalSource implements Source
var _ Source = (*LocalSource)(nil)

// NewLocalSource creates a source serving name from dir.
func NewLocalSource(dir, name string) *LocalSource {
	return &LocalSource{dir: dir, name: name}
}

// Open implements Source.
func (s *LocalSource) Open(ctx context.Context, fileID string) (*File, error) {
	content, err := os.ReadFile(filepath.Join(s.dir, s.name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.name, err)
	}

	name := filepath.Base(s.name)
	return &File{
		Name:        name,
		ContentType: ContentType(name, content),
		Content:     content,
	}, nil
}
