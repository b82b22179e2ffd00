package kb

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/sha1n/mcp-statute-server/internal/domain"
	"github.com/sha1n/mcp-statute-server/internal/statute"
)

const (
	// MaxBatchSize is the maximum number of documents per batch
	MaxBatchSize = 100

	// titleBoost weights title matches over body matches
	titleBoost = 3.0
)

// FulltextHit is one scored full-text result.
type FulltextHit struct {
	Section   string   `json:"section"`
	Title     string   `json:"title"`
	Kind      string   `json:"kind"`
	Score     float64  `json:"score"`
	Fragments []string `json:"fragments,omitempty"`
}

// FulltextQuery holds full-text search parameters.
type FulltextQuery struct {
	Query string
	Kind  string
	Limit int
}

// key identifies a query in the result cache.
func (q FulltextQuery) key() string {
	return fmt.Sprintf("%s\x00%s\x00%d", strings.ToLower(strings.TrimSpace(q.Query)), q.Kind, q.Limit)
}

// CreateIndexMapping creates the Bleve index mapping for section documents.
func CreateIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	// Body - analyzed for full-text search, term vectors for highlighting
	bodyField := bleve.NewTextFieldMapping()
	bodyField.Analyzer = standard.Name
	bodyField.Store = true
	bodyField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(domain.SectionFieldBody, bodyField)

	// Title - analyzed, stored
	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = standard.Name
	titleField.Store = true
	titleField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(domain.SectionFieldTitle, titleField)

	// Number - keyword, stored
	numberField := bleve.NewTextFieldMapping()
	numberField.Analyzer = keyword.Name
	numberField.Store = true
	docMapping.AddFieldMappingsAt(domain.SectionFieldNumber, numberField)

	// Kind - keyword, stored
	kindField := bleve.NewTextFieldMapping()
	kindField.Analyzer = keyword.Name
	kindField.Store = true
	docMapping.AddFieldMappingsAt(domain.SectionFieldKind, kindField)

	// ID - stored but not indexed (we use the document ID)
	idField := bleve.NewTextFieldMapping()
	idField.Index = false
	idField.Store = true
	docMapping.AddFieldMappingsAt(domain.SectionFieldID, idField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// sectionKinds maps section numbers to their layout role.
func sectionKinds(layout statute.Layout) map[string]string {
	kinds := make(map[string]string)
	assign := func(numbers []string, kind string) {
		for _, n := range numbers {
			if _, taken := kinds[n]; !taken {
				kinds[n] = kind
			}
		}
	}
	assign(layout.Definitions, domain.KindDefinitions)
	assign(layout.Penalties, domain.KindPenalty)
	assign(layout.Rights, domain.KindRights)
	assign(layout.Principles, domain.KindPrinciples)
	assign(layout.Functions, domain.KindFunctions)
	return kinds
}

// BuildFulltext indexes every section of doc into a new in-memory index.
func BuildFulltext(doc *statute.Document, layout statute.Layout) (bleve.Index, error) {
	index, err := bleve.NewMemOnly(CreateIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	if err := indexSections(index, doc, layout); err != nil {
		_ = index.Close()
		return nil, err
	}
	return index, nil
}

// indexSections adds every section of doc to index in batches.
func indexSections(index bleve.Index, doc *statute.Document, layout statute.Layout) error {
	kinds := sectionKinds(layout)
	batch := index.NewBatch()
	for _, s := range doc.Sections() {
		sd := domain.NewSectionDocument(s.Number, s.Title, s.Body, kinds[s.Number])
		if err := batch.Index(sd.ID, sd); err != nil {
			return fmt.Errorf("failed to index section %s: %w", s.Number, err)
		}
		if batch.Size() >= MaxBatchSize {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("batch index failed: %w", err)
			}
			batch = index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("final batch index failed: %w", err)
		}
	}

	return nil
}

// buildQuery constructs a Bleve query from search arguments.
func buildQuery(q FulltextQuery) query.Query {
	bodyQuery := bleve.NewMatchQuery(q.Query)
	bodyQuery.SetField(domain.SectionFieldBody)

	titleQuery := bleve.NewMatchQuery(q.Query)
	titleQuery.SetField(domain.SectionFieldTitle)
	titleQuery.SetBoost(titleBoost)

	searchQuery := bleve.NewDisjunctionQuery(bodyQuery, titleQuery)
	if q.Kind == "" {
		return searchQuery
	}

	kindQuery := bleve.NewTermQuery(q.Kind)
	kindQuery.SetField(domain.SectionFieldKind)
	return bleve.NewConjunctionQuery(searchQuery, kindQuery)
}

// searchFulltext runs q against index and converts the hits.
func searchFulltext(index bleve.Index, q FulltextQuery) ([]FulltextHit, error) {
	req := bleve.NewSearchRequest(buildQuery(q))
	req.Size = q.Limit
	req.Fields = []string{domain.SectionFieldNumber, domain.SectionFieldTitle, domain.SectionFieldKind}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField(domain.SectionFieldBody)

	results, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]FulltextHit, 0, len(results.Hits))
	for _, h := range results.Hits {
		hit := FulltextHit{Section: h.ID, Score: h.Score}
		if val, ok := h.Fields[domain.SectionFieldNumber].(string); ok {
			hit.Section = val
		}
		if val, ok := h.Fields[domain.SectionFieldTitle].(string); ok {
			hit.Title = val
		}
		if val, ok := h.Fields[domain.SectionFieldKind].(string); ok {
			hit.Kind = val
		}
		hit.Fragments = h.Fragments[domain.SectionFieldBody]
		hits = append(hits, hit)
	}
	return hits, nil
}
