// Package files resolves the downloadable file served by the files endpoint.
// A Source reads the configured file from local disk or from an S3-compatible
// bucket; the content type is derived from the file name, then from the
// content itself.
package files

import (
	"context"
	"errors"
	"mime"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultContentType is used when neither the extension nor the content
// identifies the file.
const DefaultContentType = "application/octet-stream"

// ErrFileNotFound is returned when the configured file does not exist.
var ErrFileNotFound = errors.New("file not found")

// File is a fully read downloadable file.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Source provides the downloadable file. fileID identifies the requested file;
// the current sources serve a single configured file and ignore it.
type Source interface {
	Open(ctx context.Context, fileID string) (*File, error)
}

// ContentType resolves the media type of a file from its extension, falling
// back to sniffing the content.
func ContentType(name string, content []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	if len(content) > 0 {
		if mt := mimetype.Detect(content); mt != nil {
			return mt.String()
		}
	}
	return DefaultContentType
}
