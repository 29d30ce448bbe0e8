// Package kv provides the small synchronous key-value store folio uses to
// persist the admin session flag and the admin's project list.
//
// Values are whole snapshots: callers always write the full value for a
// key and read it back in one piece.
package kv

import (
	"context"
	"errors"
)

// ErrWriteFailed is returned by stores that reject a write (full disk,
// lost connection, quota).
var ErrWriteFailed = errors.New("kv: write failed")

// Store is a passive key-value sink. Implementations hold no business logic.
type Store interface {
	// Get returns the value for key. ok is false when the key has never
	// been written or was deleted.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
