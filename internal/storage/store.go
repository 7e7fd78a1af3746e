package storage

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	contactsBucket = []byte("contacts")
	orderBucket    = []byte("contacts_by_name")
)

// ErrNotFound is returned when a contact id is unknown.
var ErrNotFound = errors.New("contact not found")

// ErrBadCursor is returned by ListAfter for tokens it did not issue.
var ErrBadCursor = errors.New("invalid cursor")

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, 1*time.Second)
}

// NewStoreWithTimeout waits at most timeout for the file lock held by
// another process.
func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{contactsBucket, orderBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle so other buckets can share the file.
func (s *Store) DB() *bolt.DB {
	return s.db
}

// SaveContacts inserts or replaces contacts. Missing ids are generated and
// a zero CreatedAt is stamped with the current time.
func (s *Store) SaveContacts(contacts []*Contact) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(contactsBucket)
		order := tx.Bucket(orderBucket)
		for _, c := range contacts {
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
			if c.CreatedAt.IsZero() {
				c.CreatedAt = time.Now().UTC()
			}
			if c.Name == "" {
				c.Name = c.DisplayName()
			}

			if old := b.Get([]byte(c.ID)); old != nil {
				var prev Contact
				if err := json.Unmarshal(old, &prev); err == nil {
					if err := order.Delete(sortKey(&prev)); err != nil {
						return err
					}
				}
			}

			data, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(c.ID), data); err != nil {
				return err
			}
			if err := order.Put(sortKey(c), []byte(c.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetContact(id string) (*Contact, error) {
	var contact Contact
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(contactsBucket).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &contact)
	})
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// GetContacts returns the contacts for ids in order, skipping unknown ones.
func (s *Store) GetContacts(ids []string) ([]*Contact, error) {
	out := make([]*Contact, 0, len(ids))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(contactsBucket)
		for _, id := range ids {
			data := b.Get([]byte(id))
			if data == nil {
				continue
			}
			var c Contact
			if err := json.Unmarshal(data, &c); err != nil {
				return fmt.Errorf("decoding contact %s: %w", id, err)
			}
			out = append(out, &c)
		}
		return nil
	})
	return out, err
}

func (s *Store) DeleteContact(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(contactsBucket)
		data := b.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		var c Contact
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		if err := tx.Bucket(orderBucket).Delete(sortKey(&c)); err != nil {
			return err
		}
		return b.Delete([]byte(id))
	})
}

// CountContacts returns how many contacts match filter.
func (s *Store) CountContacts(filter string) (int, error) {
	n := 0
	err := s.scan(nil, func(_ []byte, c *Contact) bool {
		if c.Matches(filter) {
			n++
		}
		return true
	})
	return n, err
}

// ListContacts returns up to limit matching contacts in name order after
// skipping offset matches. A non-positive limit returns everything.
func (s *Store) ListContacts(offset, limit int, filter string) ([]*Contact, error) {
	var out []*Contact
	skipped := 0
	err := s.scan(nil, func(_ []byte, c *Contact) bool {
		if !c.Matches(filter) {
			return true
		}
		if skipped < offset {
			skipped++
			return true
		}
		out = append(out, c)
		return limit <= 0 || len(out) < limit
	})
	return out, err
}

// ListAfter returns up to limit contacts in name order following cursor, and
// the cursor for the next call. The next cursor is empty once the end is
// reached.
func (s *Store) ListAfter(cursor string, limit int) ([]*Contact, string, error) {
	if limit <= 0 {
		return nil, "", fmt.Errorf("limit must be positive, got %d", limit)
	}
	var after []byte
	if cursor != "" {
		k, err := hex.DecodeString(cursor)
		if err != nil || len(k) == 0 {
			return nil, "", ErrBadCursor
		}
		after = k
	}

	var out []*Contact
	var last []byte
	more := false
	err := s.scan(after, func(k []byte, c *Contact) bool {
		if len(out) == limit {
			more = true
			return false
		}
		out = append(out, c)
		last = append(last[:0], k...)
		return true
	})
	if err != nil {
		return nil, "", err
	}
	if !more {
		return out, "", nil
	}
	return out, hex.EncodeToString(last), nil
}

// scan walks contacts in name order, starting strictly after the given sort
// key when one is set, until fn returns false.
func (s *Store) scan(after []byte, fn func(key []byte, c *Contact) bool) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(contactsBucket)
		cur := tx.Bucket(orderBucket).Cursor()

		var k, id []byte
		if after == nil {
			k, id = cur.First()
		} else {
			k, id = cur.Seek(after)
			if k != nil && bytes.Equal(k, after) {
				k, id = cur.Next()
			}
		}
		for ; k != nil; k, id = cur.Next() {
			data := b.Get(id)
			if data == nil {
				continue
			}
			var c Contact
			if err := json.Unmarshal(data, &c); err != nil {
				return fmt.Errorf("decoding contact %s: %w", id, err)
			}
			if !fn(k, &c) {
				return nil
			}
		}
		return nil
	})
}
