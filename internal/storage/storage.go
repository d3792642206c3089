package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const uploadPrefix = "scrapbook"

// ErrUnsupportedFormat is returned when an upload is not one of the
// accepted image formats.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// allowedExtensions mirrors the formats the scrapbook accepts.
var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// File is a single uploaded image held in memory.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
	PublicURL(key string) string
}

// Storage wraps an ObjectStorage backend with a stable API. Its Upload
// method is the single operation the scrapbook needs: store an image,
// get back a durable retrieval URL.
type Storage struct {
	backend ObjectStorage
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Upload validates the image format, stores the file under a generated
// key and returns its public retrieval URL.
func (s *Storage) Upload(ctx context.Context, file File) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", ErrUnsupportedFormat
	}
	if file.ContentType != "" && !strings.HasPrefix(file.ContentType, "image/") {
		return "", ErrUnsupportedFormat
	}

	key := fmt.Sprintf("%s/%s%s", uploadPrefix, uuid.NewString(), ext)
	reader := bytes.NewReader(file.Data)
	if err := s.backend.Put(ctx, key, reader, int64(len(file.Data)), contentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	return s.backend.PublicURL(key), nil
}

// Get opens a reader for an object in the configured bucket.
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes an object from the configured bucket.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}
