package paging

import "context"

// UnknownTotal marks a total count that has not been measured yet.
const UnknownTotal = -1

// Mode selects how a Page addresses the remote collection.
type Mode int

const (
	// ModeOffset addresses pages by offset/limit and pushes the filter to the source.
	ModeOffset Mode = iota
	// ModeCursor addresses pages by an opaque continuation token.
	ModeCursor
)

func (m Mode) String() string {
	switch m {
	case ModeOffset:
		return "offset"
	case ModeCursor:
		return "cursor"
	default:
		return "unknown"
	}
}

// Page describes the next slice to fetch. Offset and Filter are set in
// ModeOffset, Cursor in ModeCursor ("" requests the first page).
type Page struct {
	Offset int
	Limit  int
	Filter string
	Cursor string
}

// Result is one fetched page. Total is UnknownTotal unless the source
// learned the size of the collection while serving the page.
type Result[T any] struct {
	Items      []T
	NextCursor string
	Total      int
}

// Source fetches pages. Fetch must be idempotent for identical pages and
// return fewer than Limit items (or an empty NextCursor) once exhausted.
type Source[T any] interface {
	Fetch(ctx context.Context, page Page) (Result[T], error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc[T any] func(ctx context.Context, page Page) (Result[T], error)

// Fetch implements Source.
func (f SourceFunc[T]) Fetch(ctx context.Context, page Page) (Result[T], error) {
	return f(ctx, page)
}

// Counter is implemented by offset sources that can measure the filtered
// collection up front.
type Counter interface {
	Count(ctx context.Context, filter string) (int, error)
}

// Moder lets a source declare its addressing mode.
type Moder interface {
	Mode() Mode
}

// Snapshot is the persisted form of a collection's materialized prefix.
type Snapshot[T any] struct {
	Items       []T    `json:"items" msgpack:"items" cbor:"items"`
	TotalCount  int    `json:"total_count" msgpack:"total_count" cbor:"total_count"`
	LoadedCount int    `json:"loaded_count" msgpack:"loaded_count" cbor:"loaded_count"`
	Cursor      string `json:"cursor,omitempty" msgpack:"cursor,omitempty" cbor:"cursor,omitempty"`
	Done        bool   `json:"done" msgpack:"done" cbor:"done"`
}

// Store persists snapshots by key. Get reports a miss as (zero, false, nil).
type Store[T any] interface {
	Get(ctx context.Context, key string) (Snapshot[T], bool, error)
	Set(ctx context.Context, key string, snap Snapshot[T]) error
	Delete(ctx context.Context, key string) error
}

// Notifier receives the identifiers of newly materialized items.
// Calls are best effort; nothing is read back.
type Notifier interface {
	ItemsChanged(ids []string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ids []string)

// ItemsChanged implements Notifier.
func (f NotifierFunc) ItemsChanged(ids []string) { f(ids) }

// CacheKey returns the store key for filter under prefix. The empty filter
// maps to "all".
func CacheKey(prefix, filter string) string {
	if filter == "" {
		filter = "all"
	}
	return prefix + filter
}
