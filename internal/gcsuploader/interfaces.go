package gcsuploader

import (
	"context"
	"io"
)

// ObjectStore reads and writes statement exports in Cloud Storage.
type ObjectStore interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
	Upload(ctx context.Context, bucket, object, filePath string) (string, error)
}

var _ ObjectStore = (*Client)(nil)
