// Package paging implements an incrementally materialized, optionally cached
// view over a remote collection.
//
// A Collection pulls pages from a Source on demand (scroll proximity), keeps
// at most one fetch in flight, restarts on filter changes after a debounce
// window and persists its materialized prefix through a Store. Every reset
// starts a new epoch; results that arrive for a superseded epoch are dropped.
//
// Failures never escape a Collection. Fetch, count and cache errors are
// reported to the injected Logger (and an optional failure handler) and the
// collection stays usable: the next scroll trigger simply tries again.
package paging
