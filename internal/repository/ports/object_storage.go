package ports

import (
	"context"
	"io"
)

// ObjectStorage stores binary objects and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, objectName, contentType string, reader io.Reader, size int64) (string, error)
}
