package domain

import (
	"context"
	"io"
	"time"
)

// BlobWriter uploads objects to blob storage. PutMultipart is for payloads
// large enough to benefit from concurrent part uploads.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}

// BlobInfo describes one stored object.
type BlobInfo struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// BlobReader retrieves objects from blob storage.
type BlobReader interface {
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
}

// SignalArchiver rolls completed analyses into monthly JSONL archive objects.
type SignalArchiver interface {
	// ArchiveMonth archives every analysis recorded for the month containing
	// ts and returns the number of records written.
	ArchiveMonth(ctx context.Context, ts time.Time) (int64, error)
}
