package statute

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Option configures Load.
type Option func(*options)

type options struct {
	grammar   *Grammar
	layout    Layout
	stopWords map[string]struct{}
	logger    *slog.Logger
	now       func() time.Time
}

// WithGrammar sets the segmentation grammar.
func WithGrammar(g *Grammar) Option {
	return func(o *options) {
		if g != nil {
			o.grammar = g
		}
	}
}

// WithLayout sets which sections hold the derived structures.
func WithLayout(l Layout) Option {
	return func(o *options) {
		o.layout = l
	}
}

// WithStopWords replaces the default stop words.
func WithStopWords(words []string) Option {
	return func(o *options) {
		o.stopWords = BuildStopWordMap(words)
	}
}

// WithLogger sets the logger used for parsing notes.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the time source for LoadedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		grammar:   DefaultGrammar(),
		layout:    DefaultLayout(),
		stopWords: BuildStopWordMap(DefaultStopWords),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load segments raw statute text and builds every derived structure in one pass.
// It performs no I/O. ErrMalformedSource is returned for empty text or text
// without any usable section.
func Load(raw string, opts ...Option) (*Document, error) {
	return newOptions(opts).load(raw)
}

func (o *options) load(raw string) (*Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrMalformedSource)
	}

	seg, boundaries := o.grammar.segment(raw)
	if boundaries == 0 {
		return nil, fmt.Errorf("%w: no section boundaries found", ErrMalformedSource)
	}
	for _, note := range seg.notes {
		o.logger.Warn("Statute parsing note", "note", note)
	}
	if len(seg.sections) == 0 {
		return nil, fmt.Errorf("%w: all %d sections are empty", ErrMalformedSource, boundaries)
	}

	doc := &Document{
		id:        uuid.NewString(),
		source:    raw,
		charCount: utf8.RuneCountInString(raw),
		loadedAt:  o.now(),
		preamble:  seg.preamble,
		notes:     seg.notes,
		sections:  seg.sections,
		byNumber:  make(map[string]int, len(seg.sections)),
		defs:      make(map[string]Definition),
		penalties: make(map[string]PenaltySection),
		clauses:   make(map[ClauseList][]Clause),
	}
	for i, s := range seg.sections {
		doc.byNumber[s.Number] = i
	}

	for _, s := range doc.designated(o.layout.Definitions) {
		for _, def := range o.grammar.extractDefinitions(s) {
			if _, exists := doc.defs[def.Key]; !exists {
				doc.defOrder = append(doc.defOrder, def.Key)
			}
			doc.defs[def.Key] = def
		}
	}

	for _, s := range doc.designated(o.layout.Penalties) {
		doc.penalties[s.Number] = extractPenalty(s)
		doc.penOrder = append(doc.penOrder, s.Number)
	}

	for list, numbers := range map[ClauseList][]string{
		ClauseRights:     o.layout.Rights,
		ClausePrinciples: o.layout.Principles,
		ClauseFunctions:  o.layout.Functions,
	} {
		clauses := []Clause{}
		for _, s := range doc.designated(numbers) {
			clauses = append(clauses, o.grammar.extractClauses(s)...)
		}
		doc.clauses[list] = clauses
	}

	doc.index = buildIndex(doc.sections, o.stopWords)

	o.logger.Debug("Statute loaded",
		"id", doc.id,
		"sections", len(doc.sections),
		"definitions", len(doc.defs),
		"penalties", len(doc.penalties),
		"index_terms", doc.index.Terms(),
	)
	return doc, nil
}

// designated returns the present sections among numbers, skipping missing ones.
func (d *Document) designated(numbers []string) []Section {
	var out []Section
	seen := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if i, ok := d.byNumber[n]; ok {
			out = append(out, d.sections[i])
		}
	}
	return out
}
