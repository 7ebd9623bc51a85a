// Package storage abstracts the blob store holding raw gesture images. The
// engine compensates for partial failures, so Delete must be safe to call on
// a ref that was just stored.
package storage

import "context"

// BlobStore stores, retrieves and deletes raw image blobs by opaque ref.
type BlobStore interface {
	// Store persists data under a caller-chosen ref.
	Store(ctx context.Context, ref string, contentType string, data []byte) error
	// Read returns the blob and its content type.
	Read(ctx context.Context, ref string) ([]byte, string, error)
	// Delete removes the blob. Deleting a missing ref is an error so that
	// compensation failures show up in logs.
	Delete(ctx context.Context, ref string) error
}
