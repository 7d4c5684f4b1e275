package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving binary objects,
// namespaced by an arbitrary key (a place ID for scraper screenshots).
type ObjectStore interface {
	Save(ctx context.Context, namespace string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
