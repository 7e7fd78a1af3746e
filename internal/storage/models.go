package storage

import (
	"strings"
	"time"
)

type Contact struct {
	ID        string    `json:"id" msgpack:"id" cbor:"id" toml:"id" yaml:"id"`
	FirstName string    `json:"first_name" msgpack:"first_name" cbor:"first_name" toml:"first_name" yaml:"first_name"`
	LastName  string    `json:"last_name" msgpack:"last_name" cbor:"last_name" toml:"last_name" yaml:"last_name"`
	Name      string    `json:"name" msgpack:"name" cbor:"name" toml:"name" yaml:"name"`
	Email     string    `json:"email" msgpack:"email" cbor:"email" toml:"email" yaml:"email"`
	Phone     string    `json:"phone" msgpack:"phone" cbor:"phone" toml:"phone" yaml:"phone"`
	Title     string    `json:"title" msgpack:"title" cbor:"title" toml:"title" yaml:"title"`
	Account   string    `json:"account" msgpack:"account" cbor:"account" toml:"account" yaml:"account"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at" cbor:"created_at" toml:"created_at" yaml:"created_at"`
}

// DisplayName falls back to the joined first and last name.
func (c *Contact) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Matches reports whether filter is a case-insensitive substring of the
// contact's name or email. An empty filter matches everything.
func (c *Contact) Matches(filter string) bool {
	if filter == "" {
		return true
	}
	f := strings.ToLower(filter)
	return strings.Contains(strings.ToLower(c.DisplayName()), f) ||
		strings.Contains(strings.ToLower(c.Email), f)
}

func sortKey(c *Contact) []byte {
	return []byte(strings.ToLower(c.LastName) + "\x00" + strings.ToLower(c.FirstName) + "\x00" + c.ID)
}
