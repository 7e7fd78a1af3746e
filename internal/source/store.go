package source

import (
	"context"

	"github.com/pders01/lazyload/internal/paging"
	"github.com/pders01/lazyload/internal/storage"
)

// Offset pages the local repository by offset and counts matches up front.
type Offset struct {
	repo *storage.Store
}

func NewOffset(repo *storage.Store) *Offset {
	return &Offset{repo: repo}
}

func (o *Offset) Mode() paging.Mode { return paging.ModeOffset }

func (o *Offset) Fetch(ctx context.Context, page paging.Page) (paging.Result[storage.Contact], error) {
	if err := ctx.Err(); err != nil {
		return paging.Result[storage.Contact]{}, err
	}
	contacts, err := o.repo.ListContacts(page.Offset, page.Limit, page.Filter)
	if err != nil {
		return paging.Result[storage.Contact]{}, err
	}
	return paging.Result[storage.Contact]{Items: deref(contacts), Total: paging.UnknownTotal}, nil
}

func (o *Offset) Count(ctx context.Context, filter string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return o.repo.CountContacts(filter)
}

// Cursor walks the repository in name order using opaque tokens. It has no
// server-side filter; pair it with a post-filter.
type Cursor struct {
	repo *storage.Store
}

func NewCursor(repo *storage.Store) *Cursor {
	return &Cursor{repo: repo}
}

func (c *Cursor) Mode() paging.Mode { return paging.ModeCursor }

func (c *Cursor) Fetch(ctx context.Context, page paging.Page) (paging.Result[storage.Contact], error) {
	if err := ctx.Err(); err != nil {
		return paging.Result[storage.Contact]{}, err
	}
	contacts, next, err := c.repo.ListAfter(page.Cursor, page.Limit)
	if err != nil {
		return paging.Result[storage.Contact]{}, err
	}
	return paging.Result[storage.Contact]{
		Items:      deref(contacts),
		NextCursor: next,
		Total:      paging.UnknownTotal,
	}, nil
}

func deref(contacts []*storage.Contact) []storage.Contact {
	out := make([]storage.Contact, len(contacts))
	for i, c := range contacts {
		out[i] = *c
	}
	return out
}
