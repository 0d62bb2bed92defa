package ports

import (
	"context"
	"io"
	"time"
)

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	// For localfs this is the same object key. For gdrive it is the real
	// fileId, so later reads and deletes can use it.
	ObjectKey string
	Size      int64
}

// ObjectInfo describes a stored artifact, as returned by ListObjects.
type ObjectInfo struct {
	ObjectKey string
	Size      int64
	UpdatedAt time.Time
}

// StorageProvider is the artifact-store contract shared by the runner
// (which writes preview files, archives and audits) and the results API
// (which reads them). Implementations: localfs, gdrive.
type StorageProvider interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
	GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error)
	DeleteObject(ctx context.Context, objectKey string) error

	// ListObjects returns all objects whose key starts with prefix,
	// ordered by key. Used to enumerate archive copies of a task.
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
