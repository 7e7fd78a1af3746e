package paging

// DefaultScrollThreshold is the distance from the bottom at or below which a
// scroll event asks for the next page.
const DefaultScrollThreshold = 20

// ShouldLoad reports whether a scroll position distanceFromBottom units away
// from the end of the materialized list warrants a fetch.
func ShouldLoad(distanceFromBottom, threshold int, loading, exhausted bool) bool {
	if loading || exhausted {
		return false
	}
	return distanceFromBottom <= threshold
}
