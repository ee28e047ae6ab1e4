package files

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/phrazzld/cityinfo-api/internal/config"
)

// ObjectReader fetches a whole object from a bucket. It returns
// ErrFileNotFound when the object does not exist.
type ObjectReader interface {
	ReadObject(ctx context.Context, bucket, object string) ([]byte, error)
}

// S3Source reads the file from an S3-compatible bucket.
type S3Source struct {
	objects ObjectReader
	bucket  string
	name    string
}

// Ensure S3Source implements Source
var _ Source = (*S3Source)(nil)

// NewS3Source creates a source serving name from bucket through objects.
func NewS3Source(objects ObjectReader, bucket, name string) *S3Source {
	return &S3Source{objects: objects, bucket: bucket, name: name}
}

// Open implements Source.
func (s *S3Source) Open(ctx context.Context, fileID string) (*File, error) {
	content, err := s.objects.ReadObject(ctx, s.bucket, s.name)
	if err != nil {
		return nil, err
	}

	name := path.Base(s.name)
	return &File{
		Name:        name,
		ContentType: ContentType(name, content),
		Content:     content,
	}, nil
}

// MinioReader implements ObjectReader with a minio client.
type MinioReader struct {
	client *minio.Client
}

// Ensure MinioReader implements ObjectReader
var _ ObjectReader = (*MinioReader)(nil)

// NewMinioReader creates a client for the configured endpoint.
func NewMinioReader(cfg config.S3Config) (*MinioReader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioReader{client: client}, nil
}

// ReadObject implements ObjectReader.
func (r *MinioReader) ReadObject(ctx context.Context, bucket, object string) ([]byte, error) {
	obj, err := r.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioError(err, object)
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapMinioError(err, object)
	}
	return content, nil
}

func mapMinioError(err error, object string) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return ErrFileNotFound
	}
	return fmt.Errorf("read object %s: %w", object, err)
}
