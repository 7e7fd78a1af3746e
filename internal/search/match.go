package search

import (
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/pders01/lazyload/internal/storage"
)

// MatchContact is the post-filter used with sources that cannot filter on
// the backend. Substring matches on name or email always pass; otherwise
// the filter must fuzzily match the display name.
func MatchContact(c storage.Contact, filter string) bool {
	if c.Matches(filter) {
		return true
	}
	return fuzzy.MatchFold(filter, c.DisplayName())
}
