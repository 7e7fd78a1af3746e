package search

import "github.com/pders01/lazyload/internal/storage"

// Result is a ranked contact hit.
type Result struct {
	Contact *storage.Contact
	Score   float64
}

// Searcher defines the minimal search API used by the TUI.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}
