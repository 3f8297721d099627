package storage

import (
	"context"
	"io"
)

// Uploader persists downloaded chat media and returns a URL the stored
// message row can reference.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedURL string, err error)
}
