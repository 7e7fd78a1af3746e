package paging

import "fmt"

// FailureKind classifies errors a Collection absorbs.
type FailureKind int

const (
	// FetchFailure is a source error while loading a page.
	FetchFailure FailureKind = iota + 1
	// CountFailure is a failed total-count query; the total stays unknown.
	CountFailure
	// CacheFailure is a failed or corrupt snapshot read, write or delete.
	CacheFailure
)

func (k FailureKind) String() string {
	switch k {
	case FetchFailure:
		return "fetch"
	case CountFailure:
		return "count"
	case CacheFailure:
		return "cache"
	default:
		return "unknown"
	}
}

// Failure describes an absorbed error.
type Failure struct {
	Kind  FailureKind
	Op    string
	Key   string
	Epoch uint64
	Err   error
}

func (f *Failure) Error() string {
	if f.Key != "" {
		return fmt.Sprintf("%s %s %q: %v", f.Kind, f.Op, f.Key, f.Err)
	}
	return fmt.Sprintf("%s %s: %v", f.Kind, f.Op, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }
