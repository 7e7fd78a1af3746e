// Package cache stores paging snapshots in byte-oriented providers.
//
// A Provider must return exactly the bytes previously stored for a key; the
// SnapshotStore owns encoding through a Codec.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrRejected is returned when a provider declines a write under pressure.
var ErrRejected = errors.New("cache: write rejected")

// Provider is a minimal byte store with TTLs, safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value. cost may be ignored; ok is false when the store
	// dropped the write.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)
	// Del removes key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error
	Close(ctx context.Context) error
}
