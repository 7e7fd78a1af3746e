package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/lazyload/internal/paging"
	"github.com/pders01/lazyload/internal/storage"
)

// Index keeps a bleve index of contacts in step with what the paging
// collection loads. It implements paging.Notifier.
type Index struct {
	repo *storage.Store
	idx  bleve.Index
	log  paging.Logger
}

var (
	_ Searcher        = (*Index)(nil)
	_ DebugStatser    = (*Index)(nil)
	_ paging.Notifier = (*Index)(nil)
)

// field boosts used by Search
var boosts = map[string]float64{
	"name":    4.0,
	"email":   2.0,
	"account": 1.0,
	"title":   1.0,
}

// Open creates or opens the index at indexPath. An empty path keeps the
// index in memory.
func Open(repo *storage.Store, indexPath string, log paging.Logger) (*Index, error) {
	if log == nil {
		log = paging.NopLogger{}
	}

	var idx bleve.Index
	var err error
	if indexPath == "" {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if mkErr := os.MkdirAll(filepath.Dir(indexPath), 0o755); mkErr != nil {
			return nil, fmt.Errorf("creating index directory: %w", mkErr)
		}
		idx, err = bleve.Open(indexPath)
		if err != nil {
			idx, err = bleve.New(indexPath, buildIndexMapping())
		}
	}
	if err != nil {
		return nil, fmt.Errorf("opening search index: %w", err)
	}
	return &Index{repo: repo, idx: idx, log: log}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()
	for _, name := range []string{"name", "account", "title"} {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = standard.Name
		f.Store = true
		dm.AddFieldMappingsAt(name, f)
	}

	email := bleve.NewTextFieldMapping()
	email.Analyzer = keyword.Name
	email.Store = true
	dm.AddFieldMappingsAt("email", email)

	im.DefaultMapping = dm
	return im
}

func document(c *storage.Contact) map[string]any {
	return map[string]any{
		"name":    c.DisplayName(),
		"email":   strings.ToLower(c.Email),
		"account": c.Account,
		"title":   c.Title,
	}
}

// ItemsChanged indexes the contacts with the given ids. Errors are logged;
// a missed update only makes search results slightly stale.
func (x *Index) ItemsChanged(ids []string) {
	contacts, err := x.repo.GetContacts(ids)
	if err != nil {
		x.log.Warn("loading contacts for index", paging.Fields{"ids": len(ids), "error": err.Error()})
		return
	}
	if err := x.index(contacts); err != nil {
		x.log.Warn("indexing contacts", paging.Fields{"ids": len(ids), "error": err.Error()})
		return
	}
	x.log.Debug("indexed contacts", paging.Fields{"count": len(contacts)})
}

// Reindex indexes every contact in the repository.
func (x *Index) Reindex() error {
	contacts, err := x.repo.ListContacts(0, 0, "")
	if err != nil {
		return err
	}
	return x.index(contacts)
}

func (x *Index) index(contacts []*storage.Contact) error {
	batch := x.idx.NewBatch()
	for _, c := range contacts {
		if err := batch.Index(c.ID, document(c)); err != nil {
			return err
		}
	}
	return x.idx.Batch(batch)
}

// Remove drops a contact from the index.
func (x *Index) Remove(id string) error {
	return x.idx.Delete(id)
}

func (x *Index) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		for field, boost := range boosts {
			if field == "email" {
				wq := bleve.NewWildcardQuery("*" + tok + "*")
				wq.SetField(field)
				wq.SetBoost(boost)
				qs = append(qs, wq)
				continue
			}
			mq := bleve.NewMatchQuery(tok)
			mq.SetField(field)
			mq.SetBoost(boost)
			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(field)
			pq.SetBoost(boost * 0.8)
			qs = append(qs, mq, pq)
		}
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := x.idx.Search(req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(res.Hits))
	scores := make(map[string]float64, len(res.Hits))
	for i, h := range res.Hits {
		ids[i] = h.ID
		scores[h.ID] = h.Score
	}
	contacts, err := x.repo.GetContacts(ids)
	if err != nil {
		return nil, err
	}
	out := make([]*Result, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, &Result{Contact: c, Score: scores[c.ID]})
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (x *Index) DocCount() (int, error) {
	n, err := x.idx.DocCount()
	return int(n), err
}

func (x *Index) Close() error {
	return x.idx.Close()
}

// tokenize lowercases text and splits it on anything that is not a letter,
// digit or one of the email punctuation marks.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '@' && r != '.' && r != '_' && r != '-'
	})
}
