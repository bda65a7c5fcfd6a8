// Package storage defines the object-storage contracts used by vidfeed.
// Uploads never pass through the server: clients POST directly to the bucket
// using a presigned grant, and the server only reads objects back.
package storage

import (
	"context"

	"github.com/prn-tf/vidfeed/internal/sigv4"
)

// ObjectStore retrieves stored objects.
type ObjectStore interface {
	// Get returns the full object body.
	// Returns domain.ErrObjectNotFound if the object does not exist.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// CredentialsProvider resolves the credentials used to sign upload policies.
type CredentialsProvider = sigv4.CredentialsProvider
