// Package storage holds the two interchangeable blob backends: image
// files on local disk or objects in a MinIO bucket with public URLs.
// A ref is backend-specific (relative path or object key) and is what
// the metadata store persists.
package storage

import (
	"context"
	"io"
)

// BlobStore stores image bytes under generated names. Delete is
// idempotent: removing an absent blob is not an error, which lets the
// delete path tolerate blobs lost to a crash between the record delete
// and the blob delete. Blobs orphaned the other way around (written
// but never referenced because the metadata insert failed and cleanup
// also failed) are accepted and not reconciled.
type BlobStore interface {
	// Put writes data under name and returns the ref to persist.
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	// Get opens the blob for reading. Returns domain.ErrBlobNotFound
	// if the ref does not resolve.
	Get(ctx context.Context, ref string) (io.ReadCloser, error)
	// Delete removes the blob. Absent blobs are a no-op.
	Delete(ctx context.Context, ref string) error
	// URL returns the client-facing URL for a ref.
	URL(ref string) string
	// Ping reports backend reachability for health checks.
	Ping(ctx context.Context) error
}
