package domain

import "strings"

// SectionDocument represents one statute section in the full-text index.
type SectionDocument struct {
	// ID is the section number, unique within a loaded statute.
	ID string `json:"id"`

	// Number is the section number as written in the heading.
	// Example: "3", "12A"
	Number string `json:"number"`

	// Title is the heading text, possibly empty.
	Title string `json:"title"`

	// Body is the section text used for indexing and highlighted fragments.
	Body string `json:"body"`

	// Kind is the role the section plays in the statute layout.
	Kind string `json:"kind"`
}

// Section kinds.
const (
	KindSection     = "section"
	KindDefinitions = "definitions"
	KindPenalty     = "penalty"
	KindRights      = "rights"
	KindPrinciples  = "principles"
	KindFunctions   = "functions"
)

// Bleve field name constants for consistent field references in queries and mappings.
const (
	SectionFieldID     = "id"
	SectionFieldNumber = "number"
	SectionFieldTitle  = "title"
	SectionFieldBody   = "body"
	SectionFieldKind   = "kind"
)

// NewSectionDocument builds an index document. An empty kind means a plain section.
func NewSectionDocument(number, title, body, kind string) SectionDocument {
	if kind == "" {
		kind = KindSection
	}
	return SectionDocument{
		ID:     number,
		Number: number,
		Title:  strings.TrimSpace(title),
		Body:   body,
		Kind:   kind,
	}
}
