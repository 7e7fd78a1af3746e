package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pders01/lazyload/internal/paging"
)

// SnapshotStore adapts a Provider to paging.Store.
type SnapshotStore[T any] struct {
	p     Provider
	codec Codec[paging.Snapshot[T]]
	ttl   time.Duration
}

var _ paging.Store[struct{}] = (*SnapshotStore[struct{}])(nil)

func NewSnapshotStore[T any](p Provider, codec Codec[paging.Snapshot[T]], ttl time.Duration) *SnapshotStore[T] {
	return &SnapshotStore[T]{p: p, codec: codec, ttl: ttl}
}

// Get decodes the snapshot under key. Undecodable entries are removed and
// reported as errors so the caller can refetch.
func (s *SnapshotStore[T]) Get(ctx context.Context, key string) (paging.Snapshot[T], bool, error) {
	b, ok, err := s.p.Get(ctx, key)
	if err != nil || !ok {
		return paging.Snapshot[T]{}, false, err
	}
	snap, err := s.codec.Decode(b)
	if err != nil {
		err = fmt.Errorf("decoding snapshot %q: %w", key, err)
		if delErr := s.p.Del(ctx, key); delErr != nil {
			err = errors.Join(err, fmt.Errorf("dropping snapshot %q: %w", key, delErr))
		}
		return paging.Snapshot[T]{}, false, err
	}
	return snap, true, nil
}

func (s *SnapshotStore[T]) Set(ctx context.Context, key string, snap paging.Snapshot[T]) error {
	b, err := s.codec.Encode(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot %q: %w", key, err)
	}
	ok, err := s.p.Set(ctx, key, b, int64(len(b)), s.ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRejected
	}
	return nil
}

func (s *SnapshotStore[T]) Delete(ctx context.Context, key string) error {
	return s.p.Del(ctx, key)
}
