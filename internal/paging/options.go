package paging

import "time"

// DefaultPageSize is the number of items requested per fetch.
const DefaultPageSize = 10

// Option configures a Collection.
type Option[T any] func(*Collection[T])

// WithPageSize sets the page limit. Non-positive sizes are ignored.
func WithPageSize[T any](n int) Option[T] {
	return func(c *Collection[T]) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithStore persists snapshots under prefix+filter keys.
func WithStore[T any](s Store[T], prefix string) Option[T] {
	return func(c *Collection[T]) {
		c.store = s
		c.prefix = prefix
	}
}

// WithNotifier reports the ids of newly appended items after every
// successful fetch.
func WithNotifier[T any](n Notifier, id func(T) string) Option[T] {
	return func(c *Collection[T]) {
		c.notifier = n
		c.identity = id
	}
}

// WithLogger sets the diagnostics sink.
func WithLogger[T any](l Logger) Option[T] {
	return func(c *Collection[T]) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDebounce sets the quiet period applied to filter changes.
func WithDebounce[T any](d time.Duration) Option[T] {
	return func(c *Collection[T]) {
		if d > 0 {
			c.wait = d
		}
	}
}

// WithScrollThreshold sets the distance used by OnScrollProximity.
func WithScrollThreshold[T any](n int) Option[T] {
	return func(c *Collection[T]) {
		if n >= 0 {
			c.threshold = n
		}
	}
}

// WithMode overrides the addressing mode declared by the source.
func WithMode[T any](m Mode) Option[T] {
	return func(c *Collection[T]) {
		c.mode = m
	}
}

// WithCounter overrides the total-count collaborator. Passing nil disables
// up-front counting even when the source implements Counter.
func WithCounter[T any](ctr Counter) Option[T] {
	return func(c *Collection[T]) {
		c.counter = ctr
	}
}

// WithPostFilter filters the materialized items locally instead of
// restarting the collection on filter changes. Visible holds the matches.
func WithPostFilter[T any](match func(item T, filter string) bool) Option[T] {
	return func(c *Collection[T]) {
		c.match = match
	}
}

// WithFailureHandler is called after every absorbed failure has been logged.
func WithFailureHandler[T any](fn func(*Failure)) Option[T] {
	return func(c *Collection[T]) {
		c.onFailure = fn
	}
}
