package statute

import (
	"sync/atomic"
)

// Indexer holds the current Document and serves lookups against it.
//
// It is Unloaded until the first successful Load; reads fail with ErrNotLoaded
// before that. Load builds a complete new Document and swaps it in atomically,
// so readers never observe a partial state and readers holding the previous
// Document may keep using it. Concurrent Load calls are the caller's
// responsibility to serialize: the last swap wins.
type Indexer struct {
	opts *options
	doc  atomic.Pointer[Document]
}

// NewIndexer creates an Unloaded indexer. The options apply to every Load.
func NewIndexer(opts ...Option) *Indexer {
	return &Indexer{opts: newOptions(opts)}
}

// Load parses raw and replaces the current document. On error the previous
// state, loaded or not, is kept.
func (i *Indexer) Load(raw string) (*Document, error) {
	doc, err := i.opts.load(raw)
	if err != nil {
		return nil, err
	}
	i.doc.Store(doc)
	return doc, nil
}

// Build parses raw with the indexer's options without installing the result.
func (i *Indexer) Build(raw string) (*Document, error) {
	return i.opts.load(raw)
}

// Swap installs an already built document and returns the previous one (nil when Unloaded).
func (i *Indexer) Swap(doc *Document) *Document {
	return i.doc.Swap(doc)
}

// Loaded reports whether a document is installed.
func (i *Indexer) Loaded() bool {
	return i.doc.Load() != nil
}

// Document returns the current document.
func (i *Indexer) Document() (*Document, error) {
	doc := i.doc.Load()
	if doc == nil {
		return nil, ErrNotLoaded
	}
	return doc, nil
}

// GetSection looks up a section by number.
func (i *Indexer) GetSection(number string) (Section, error) {
	doc, err := i.Document()
	if err != nil {
		return Section{}, err
	}
	return doc.GetSection(number)
}

// GetDefinition looks up a defined term, case-insensitively.
func (i *Indexer) GetDefinition(term string) (Definition, error) {
	doc, err := i.Document()
	if err != nil {
		return Definition{}, err
	}
	return doc.GetDefinition(term)
}

// GetPenalty looks up the penalty data of a section.
func (i *Indexer) GetPenalty(number string) (PenaltySection, error) {
	doc, err := i.Document()
	if err != nil {
		return PenaltySection{}, err
	}
	return doc.GetPenalty(number)
}

// Search ranks sections by query-token occurrences.
func (i *Indexer) Search(query string) ([]SearchHit, error) {
	doc, err := i.Document()
	if err != nil {
		return nil, err
	}
	return doc.Search(query), nil
}

// Clauses returns one of the enumerated lists.
func (i *Indexer) Clauses(list ClauseList) ([]Clause, error) {
	doc, err := i.Document()
	if err != nil {
		return nil, err
	}
	return doc.Clauses(list), nil
}
