// Package storage defines the persisted key-value store for user state.
package storage

import "context"

// Provider is a string key-value store. Values are opaque strings; callers
// that need structure encode it themselves.
type Provider interface {
	// Get returns the value stored at key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value at key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
