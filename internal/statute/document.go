package statute

import (
	"fmt"
	"strings"
	"time"
)

// Section is a numbered division of the statute.
type Section struct {
	Number string `json:"number" yaml:"number"`
	Title  string `json:"title" yaml:"title"`
	Body   string `json:"body" yaml:"body"`
}

// Definition is a term defined by the definitions section.
type Definition struct {
	// Term is the term as written in the statute.
	Term string `json:"term" yaml:"term"`
	// Key is the normalized, lower-case lookup key.
	Key string `json:"key" yaml:"key"`
	// Text is the full defining clause, e.g. "Consent means any freely given...".
	Text string `json:"text" yaml:"text"`
	// Meaning is the part of the clause after the defining verb.
	Meaning string `json:"meaning" yaml:"meaning"`
	// Marker is the enumeration marker of the clause ("a", "b", ...), empty when unlettered.
	Marker  string `json:"marker,omitempty" yaml:"marker,omitempty"`
	Section string `json:"section" yaml:"section"`
}

// Fine is a monetary amount found in a penalty clause.
type Fine struct {
	Amount float64 `json:"amount" yaml:"amount"`
	Raw    string  `json:"raw" yaml:"raw"`
}

// FormatAmount renders 500000 as "500,000.00".
func FormatAmount(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	whole, frac, _ := strings.Cut(s, ".")
	var out []byte
	for i := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, whole[i])
	}
	return string(out) + "." + frac
}

// Term is a duration such as "three (3) years".
type Term struct {
	Value int    `json:"value" yaml:"value"`
	Unit  string `json:"unit" yaml:"unit"` // year, month or day
}

// String renders the term as "3 years".
func (t Term) String() string {
	if t.Value == 1 {
		return fmt.Sprintf("%d %s", t.Value, t.Unit)
	}
	return fmt.Sprintf("%d %ss", t.Value, t.Unit)
}

// TermRange is an imprisonment range.
type TermRange struct {
	Min Term   `json:"min" yaml:"min"`
	Max Term   `json:"max" yaml:"max"`
	Raw string `json:"raw" yaml:"raw"`
}

// PenaltySection holds the best-effort numeric penalty data of one section.
// Fines and Imprisonment may be empty when no numeric pattern was found.
type PenaltySection struct {
	Section      string      `json:"section" yaml:"section"`
	Title        string      `json:"title" yaml:"title"`
	Fines        []Fine      `json:"fines" yaml:"fines"`
	Imprisonment []TermRange `json:"imprisonment" yaml:"imprisonment"`
}

// Clause is one enumerated item of a rights, principles or functions list.
type Clause struct {
	Marker string `json:"marker" yaml:"marker"`
	Text   string `json:"text" yaml:"text"`
	// Summary is the clause text up to its first ';' or ':'.
	Summary string `json:"summary" yaml:"summary"`
	Section string `json:"section" yaml:"section"`
}

// ClauseList names one of the enumerated structures.
type ClauseList string

// Clause lists extracted from designated sections.
const (
	ClauseRights     ClauseList = "rights"
	ClausePrinciples ClauseList = "principles"
	ClauseFunctions  ClauseList = "functions"
)

// SearchHit is one ranked search result.
type SearchHit struct {
	Section string `json:"section"`
	Score   int    `json:"score"`
}

// Stats summarizes a loaded document.
type Stats struct {
	Sections    int       `json:"sections" yaml:"sections"`
	Definitions int       `json:"definitions" yaml:"definitions"`
	Penalties   int       `json:"penalties" yaml:"penalties"`
	Rights      int       `json:"rights" yaml:"rights"`
	Principles  int       `json:"principles" yaml:"principles"`
	Functions   int       `json:"functions" yaml:"functions"`
	IndexTerms  int       `json:"index_terms" yaml:"index_terms"`
	Characters  int       `json:"characters" yaml:"characters"`
	LoadedAt    time.Time `json:"loaded_at" yaml:"loaded_at"`
}

// Document is a loaded statute and every structure derived from it.
// It is never mutated after Load returns, so it is safe for concurrent readers.
type Document struct {
	id        string
	source    string
	charCount int
	loadedAt  time.Time
	preamble  string
	notes     []string

	sections  []Section
	byNumber  map[string]int
	defs      map[string]Definition
	defOrder  []string
	penalties map[string]PenaltySection
	penOrder  []string
	clauses   map[ClauseList][]Clause
	index     *SearchIndex
}

// ID returns the unique identifier of this load.
func (d *Document) ID() string { return d.id }

// Source returns the raw statute text.
func (d *Document) Source() string { return d.source }

// CharCount returns the number of characters (runes) in the source.
func (d *Document) CharCount() int { return d.charCount }

// LoadedAt returns the load timestamp.
func (d *Document) LoadedAt() time.Time { return d.loadedAt }

// Preamble returns the text before the first section boundary.
func (d *Document) Preamble() string { return d.preamble }

// Notes returns the parsing notes (duplicates, dropped blocks) recorded during load.
func (d *Document) Notes() []string {
	return append([]string(nil), d.notes...)
}

// Sections returns the sections in document order.
func (d *Document) Sections() []Section {
	return append([]Section(nil), d.sections...)
}

// GetSection returns the section with the given number.
func (d *Document) GetSection(number string) (Section, error) {
	i, ok := d.byNumber[number]
	if !ok {
		return Section{}, fmt.Errorf("%w: section %q", ErrNotFound, number)
	}
	return d.sections[i], nil
}

// GetDefinition returns the definition of a term. Lookup is case-insensitive.
func (d *Document) GetDefinition(term string) (Definition, error) {
	def, ok := d.defs[normalizeTerm(term)]
	if !ok {
		return Definition{}, fmt.Errorf("%w: definition %q", ErrNotFound, term)
	}
	return def, nil
}

// Definitions returns all definitions in statute order.
func (d *Document) Definitions() []Definition {
	out := make([]Definition, 0, len(d.defOrder))
	for _, key := range d.defOrder {
		out = append(out, d.defs[key])
	}
	return out
}

// GetPenalty returns the penalty data of a section.
func (d *Document) GetPenalty(number string) (PenaltySection, error) {
	p, ok := d.penalties[number]
	if !ok {
		return PenaltySection{}, fmt.Errorf("%w: penalty section %q", ErrNotFound, number)
	}
	return p, nil
}

// Penalties returns all penalty sections in statute order.
func (d *Document) Penalties() []PenaltySection {
	out := make([]PenaltySection, 0, len(d.penOrder))
	for _, n := range d.penOrder {
		out = append(out, d.penalties[n])
	}
	return out
}

// Clauses returns one enumerated list. Unknown lists are empty.
func (d *Document) Clauses(list ClauseList) []Clause {
	return append([]Clause(nil), d.clauses[list]...)
}

// Rights returns the data subject rights list.
func (d *Document) Rights() []Clause { return d.Clauses(ClauseRights) }

// Principles returns the processing principles list.
func (d *Document) Principles() []Clause { return d.Clauses(ClausePrinciples) }

// Functions returns the functions list.
func (d *Document) Functions() []Clause { return d.Clauses(ClauseFunctions) }

// Index returns the token index.
func (d *Document) Index() *SearchIndex { return d.index }

// Search ranks sections by query-token occurrences.
func (d *Document) Search(query string) []SearchHit {
	return d.index.Search(query)
}

// Stats returns counts of the derived structures.
func (d *Document) Stats() Stats {
	return Stats{
		Sections:    len(d.sections),
		Definitions: len(d.defs),
		Penalties:   len(d.penalties),
		Rights:      len(d.clauses[ClauseRights]),
		Principles:  len(d.clauses[ClausePrinciples]),
		Functions:   len(d.clauses[ClauseFunctions]),
		IndexTerms:  d.index.Terms(),
		Characters:  d.charCount,
		LoadedAt:    d.loadedAt,
	}
}
