package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var snapshotsBucket = []byte("snapshots")

// Bolt persists entries in a bbolt bucket so snapshots survive restarts.
// Each value is prefixed with its expiry in unix nanoseconds, zero for none.
type Bolt struct {
	db   *bolt.DB
	owns bool
	now  func() time.Time
}

// OpenBolt opens a dedicated cache database at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	b, err := NewBolt(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	b.owns = true
	return b, nil
}

// NewBolt shares an already open database. Close leaves db open.
func NewBolt(db *bolt.DB) (*Bolt, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating snapshots bucket: %w", err)
	}
	return &Bolt{db: db, now: time.Now}, nil
}

func (p *Bolt) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	found, expired := false, false
	err := p.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(snapshotsBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		if len(v) < 8 {
			return fmt.Errorf("cache entry %q is truncated", key)
		}
		if exp := int64(binary.BigEndian.Uint64(v[:8])); exp > 0 && p.now().UnixNano() >= exp {
			expired = true
			return nil
		}
		// Values are only valid for the life of the transaction.
		out = append([]byte{}, v[8:]...)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if expired {
		return nil, false, p.Del(context.Background(), key)
	}
	return out, found, nil
}

func (p *Bolt) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	buf := make([]byte, 8+len(value))
	if ttl > 0 {
		binary.BigEndian.PutUint64(buf[:8], uint64(p.now().Add(ttl).UnixNano()))
	}
	copy(buf[8:], value)
	err := p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotsBucket).Put([]byte(key), buf)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Bolt) Del(_ context.Context, key string) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotsBucket).Delete([]byte(key))
	})
}

func (p *Bolt) Close(_ context.Context) error {
	if !p.owns {
		return nil
	}
	return p.db.Close()
}
