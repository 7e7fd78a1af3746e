package tui

import "fmt"

// Canonical short status messages used across the app.
const (
	MsgLoading    = "Loading…"
	MsgRefreshing = "Refreshing…"
	MsgFiltering  = "Filtering…"
	MsgSearching  = "Searching…"
	MsgNoResults  = "No results"
	MsgRendering  = "Rendering contact…"
	MsgAllLoaded  = "All contacts loaded"
	MsgLoadFailed = "Could not load contacts"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

// MsgLoadedCount summarizes paging progress. A negative total means the
// size of the collection is not known yet.
func MsgLoadedCount(loaded, total int) string {
	if total < 0 {
		return fmt.Sprintf("Loaded %d", loaded)
	}
	return fmt.Sprintf("Loaded %d of %d", loaded, total)
}

// MsgFiltered reports how many loaded contacts survive a local filter.
func MsgFiltered(visible, loaded int) string {
	return fmt.Sprintf("%d of %d loaded match", visible, loaded)
}
