package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/lazyload/internal/paging"
	"github.com/pders01/lazyload/internal/storage"
)

func seedRepo(t *testing.T) *storage.Store {
	t.Helper()
	repo, err := storage.NewStore(filepath.Join(t.TempDir(), "contacts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.SaveContacts([]*storage.Contact{
		{ID: "c1", FirstName: "Annabel", LastName: "Lee", Email: "annabel@acme.io", Account: "Acme", Title: "CTO"},
		{ID: "c2", FirstName: "Bo", LastName: "Marsh", Email: "bo@globex.com", Account: "Globex", Title: "Buyer"},
		{ID: "c3", FirstName: "Cara", LastName: "Annis", Email: "cara@initech.com", Account: "Initech"},
	}))
	return repo
}

func TestIndex_ItemsChangedAndSearch(t *testing.T) {
	repo := seedRepo(t)
	idx, err := Open(repo, "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	n, err := idx.DocCount()
	require.NoError(t, err)
	assert.Zero(t, n)

	idx.ItemsChanged([]string{"c1", "c2", "missing"})
	n, err = idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err := idx.Search("globex", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "c2", res[0].Contact.ID)

	res, err = idx.Search("anna", 10)
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Equal(t, "c1", res[0].Contact.ID)

	res, err = idx.Search("a", 10)
	require.NoError(t, err)
	assert.Empty(t, res, "single-character queries are ignored")
}

func TestIndex_EmailSubstring(t *testing.T) {
	repo := seedRepo(t)
	idx, err := Open(repo, "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	require.NoError(t, idx.Reindex())

	res, err := idx.Search("initech", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "c3", res[0].Contact.ID)

	require.NoError(t, idx.Remove("c3"))
	res, err = idx.Search("initech", 10)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestIndex_OnDisk(t *testing.T) {
	repo := seedRepo(t)
	path := filepath.Join(t.TempDir(), "nested", "index.bleve")

	idx, err := Open(repo, path, nil)
	require.NoError(t, err)
	require.NoError(t, idx.Reindex())
	require.NoError(t, idx.Close())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	reopened, err := Open(repo, path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	n, err := reopened.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

// Every page a collection loads is indexed through the notifier hook.
func TestIndex_AsCollectionNotifier(t *testing.T) {
	repo := seedRepo(t)
	idx, err := Open(repo, "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	src := paging.SourceFunc[storage.Contact](func(_ context.Context, p paging.Page) (paging.Result[storage.Contact], error) {
		cs, err := repo.ListContacts(p.Offset, p.Limit, p.Filter)
		if err != nil {
			return paging.Result[storage.Contact]{}, err
		}
		items := make([]storage.Contact, len(cs))
		for i, c := range cs {
			items[i] = *c
		}
		return paging.Result[storage.Contact]{Items: items, Total: paging.UnknownTotal}, nil
	})
	coll := paging.New[storage.Contact](src,
		paging.WithPageSize[storage.Contact](2),
		paging.WithNotifier[storage.Contact](idx, func(c storage.Contact) string { return c.ID }),
	)
	defer coll.Close()

	ctx := context.Background()
	coll.Initialize(ctx)
	n, _ := idx.DocCount()
	assert.Equal(t, 2, n)

	coll.LoadMore(ctx)
	n, _ = idx.DocCount()
	assert.Equal(t, 3, n)
}

func TestMatchContact(t *testing.T) {
	c := storage.Contact{FirstName: "Annabel", LastName: "Lee", Email: "annabel@acme.io"}
	assert.True(t, MatchContact(c, ""))
	assert.True(t, MatchContact(c, "LEE"))
	assert.True(t, MatchContact(c, "acme.io"))
	assert.True(t, MatchContact(c, "anbl"), "fuzzy subsequence of the name")
	assert.False(t, MatchContact(c, "zed"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"ann", "lee@acme.io"}, tokenize("  Ann, LEE@acme.io!"))
	assert.Empty(t, tokenize("  ,; "))
}
