// Package source adapts contact backends to paging.Source.
package source

import (
	"fmt"

	"github.com/pders01/lazyload/internal/config"
	"github.com/pders01/lazyload/internal/paging"
	"github.com/pders01/lazyload/internal/storage"
	"github.com/pders01/lazyload/internal/validation"
)

// New returns the source selected by cfg.Mode. repo may be nil for the
// server mode.
func New(cfg config.SourceConfig, repo *storage.Store) (paging.Source[storage.Contact], error) {
	switch cfg.Mode {
	case "", "offset":
		if repo == nil {
			return nil, fmt.Errorf("offset source needs a repository")
		}
		return NewOffset(repo), nil
	case "cursor":
		if repo == nil {
			return nil, fmt.Errorf("cursor source needs a repository")
		}
		return NewCursor(repo), nil
	case "server":
		endpoint, err := validation.NewEndpointValidator().ValidateAndNormalize(cfg.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("source endpoint: %w", err)
		}
		return NewServer(endpoint, cfg.UserAgent, cfg.HTTPTimeout), nil
	default:
		return nil, fmt.Errorf("unknown source mode %q", cfg.Mode)
	}
}
