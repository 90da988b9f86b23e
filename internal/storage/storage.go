// Package storage uploads exported report workbooks to object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/agrocoop/farmdesk/config"
	"github.com/google/uuid"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// PutOptions describes an uploaded object.
type PutOptions struct {
	ContentType string

	// Filename is offered to browsers downloading straight from the bucket.
	Filename string

	// Metadata is stored as user metadata on the object.
	Metadata map[string]string
}

func (o PutOptions) contentDisposition() string {
	if o.Filename == "" {
		return ""
	}
	return fmt.Sprintf("attachment; filename=%q", o.Filename)
}

// New connects to the object store selected by cfg. It returns nil when
// exports are disabled.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Backend {
	case config.BackendMinio:
		return NewMinioClient(cfg.Minio)
	case config.BackendGCS:
		return NewGCSClient(ctx, cfg.GCS)
	case config.BackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// XLSXContentType is the media type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	// ErrInvalidKey is returned for keys that were not issued by Exports.
	ErrInvalidKey = errors.New("invalid export key")

	// ErrNotExist is returned by Get for a missing object.
	ErrNotExist = errors.New("object does not exist")
)

var exportKey = regexp.MustCompile(`^[a-z-]+-\d{8}T\d{6}Z-[0-9a-f-]{36}\.xlsx$`)

// Export describes an uploaded workbook.
type Export struct {
	Key    string `json:"key"`
	Bucket string `json:"bucket"`
	Size   int64  `json:"size"`
}

// Exports stores report workbooks under generated keys.
type Exports struct {
	backend ObjectStorage
	now     func() time.Time
}

// NewExports wraps backend.
func NewExports(backend ObjectStorage) *Exports {
	return &Exports{backend: backend, now: time.Now}
}

// Upload stores a workbook for the named report and returns its key.
func (e *Exports) Upload(ctx context.Context, report string, workbook []byte) (Export, error) {
	key := fmt.Sprintf("%s-%s-%s.xlsx", report, e.now().UTC().Format("20060102T150405Z"), uuid.NewString())
	size := int64(len(workbook))
	opts := PutOptions{
		ContentType: XLSXContentType,
		Filename:    key,
		Metadata:    map[string]string{"report": report},
	}
	if err := e.backend.Put(ctx, key, bytes.NewReader(workbook), size, opts); err != nil {
		return Export{}, fmt.Errorf("upload %s: %w", key, err)
	}
	return Export{Key: key, Bucket: e.backend.Bucket(), Size: size}, nil
}

// Open returns a reader for a previously uploaded workbook.
func (e *Exports) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if !exportKey.MatchString(key) {
		return nil, ErrInvalidKey
	}
	return e.backend.Get(ctx, key)
}

// Remove deletes a previously uploaded workbook.
func (e *Exports) Remove(ctx context.Context, key string) error {
	if !exportKey.MatchString(key) {
		return ErrInvalidKey
	}
	return e.backend.Delete(ctx, key)
}
