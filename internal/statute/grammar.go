package statute

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	// DefaultBoundaryPattern matches a section heading line such as "Section 12. Title",
	// "SEC. 3. Definition of Terms. – Whenever used in this Act" or "Sec. 4: Scope".
	// Group 1 is the section number, group 2 the rest of the heading line.
	DefaultBoundaryPattern = `(?i)^[ \t]*(?:section|sec\.)[ \t]*(\d+[a-z]?)[ \t]*[.:)\-–—][ \t]*(.*)$`

	// DefaultEnumerationPattern matches lettered sub-items "(a)", "(b)", ... preceded by
	// start of text or whitespace. Group 1 is the marker.
	DefaultEnumerationPattern = `(?:^|\s)\(([a-z])\)`

	// maxTitleWords bounds a title found on the line after a bare heading
	maxTitleWords = 10
)

var (
	// titleSeparator splits "Definition of Terms. – Whenever used..." into title and body
	titleSeparator = regexp.MustCompile(`^(.+?)(?:\.[ \t]*[-–—]+|[ \t]+[–—]+)[ \t]*(.*)$`)

	// sentenceSeparator splits "Short Title. This Act shall be known..." at the first sentence end
	sentenceSeparator = regexp.MustCompile(`^(.+?)\.[ \t]+(\S.*)$`)

	// definitionPattern matches "Consent means ...", "\"Data subject\" refers to ..." inside one item
	definitionPattern = regexp.MustCompile(`(?is)^["“'‘]?(.+?)["”'’]?\s*,?\s+(means|refers?\s+to|shall\s+mean|shall\s+refer\s+to|includes)\b(.*)$`)

	// currencyPattern matches amounts such as "Php500,000.00", "P 1,000,000" or "₱100,000"
	currencyPattern = regexp.MustCompile(`(?i)(?:\bphp|₱|\bp)[ \t]?([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

	// pesosPattern matches amounts written as "500,000 pesos"
	pesosPattern = regexp.MustCompile(`(?i)\b([0-9][0-9,]*(?:\.[0-9]{1,2})?)[ \t]+pesos\b`)

	// imprisonmentPattern matches "imprisonment ranging from one (1) year to three (3) years"
	imprisonmentPattern = regexp.MustCompile(`(?is)imprisonment\s+ranging\s+from\s+(.+?\b(?:years?|months?|days?))\s+to\s+(.+?\b(?:years?|months?|days?))\b`)

	// termPattern extracts the quantity and unit of one side of an imprisonment range
	termPattern = regexp.MustCompile(`(?i)(?:\(?\s*([0-9]+)\s*\)?|\b([a-z]+)(?:\s*\(\s*([0-9]+)\s*\))?)\s+(years?|months?|days?)\b`)
)

// Grammar holds the regular-expression heuristics used to segment a statute.
// They are tuned to one document's formatting and are not expected to generalize.
type Grammar struct {
	// Boundary is applied to each line. Group 1 captures the section number;
	// an optional group 2 captures the remainder of the heading line.
	Boundary *regexp.Regexp

	// Enumeration finds sub-item markers inside a section body. Group 1 captures the marker.
	Enumeration *regexp.Regexp
}

// DefaultGrammar returns the grammar for "Section N." / "SEC. N." headed statutes.
func DefaultGrammar() *Grammar {
	g, _ := NewGrammar("", "")
	return g
}

// NewGrammar compiles a grammar from patterns. Empty patterns select the defaults.
func NewGrammar(boundary, enumeration string) (*Grammar, error) {
	if boundary == "" {
		boundary = DefaultBoundaryPattern
	}
	if enumeration == "" {
		enumeration = DefaultEnumerationPattern
	}

	b, err := regexp.Compile(boundary)
	if err != nil {
		return nil, fmt.Errorf("invalid section pattern: %w", err)
	}
	if b.NumSubexp() < 1 {
		return nil, fmt.Errorf("section pattern must capture the section number in group 1")
	}

	e, err := regexp.Compile(enumeration)
	if err != nil {
		return nil, fmt.Errorf("invalid enumeration pattern: %w", err)
	}
	if e.NumSubexp() < 1 {
		return nil, fmt.Errorf("enumeration pattern must capture the marker in group 1")
	}

	return &Grammar{Boundary: b, Enumeration: e}, nil
}

// heading is a recognized boundary line.
type heading struct {
	number    string
	lineStart int
	lineEnd   int // offset just past the line terminator
	rest      string
	restStart int
}

// matchHeading applies the boundary pattern to one line.
func (g *Grammar) matchHeading(line string, lineStart, lineEnd int) (heading, bool) {
	m := g.Boundary.FindStringSubmatchIndex(line)
	if m == nil || m[2] < 0 {
		return heading{}, false
	}

	h := heading{
		number:    strings.TrimSpace(line[m[2]:m[3]]),
		lineStart: lineStart,
		lineEnd:   lineEnd,
	}
	if h.number == "" {
		return heading{}, false
	}
	if len(m) >= 6 && m[4] >= 0 {
		h.rest = line[m[4]:m[5]]
		h.restStart = lineStart + m[4]
	}
	return h, true
}

// enumerate splits text into marker-delimited items. Text before the first marker is ignored.
func (g *Grammar) enumerate(text string) []item {
	matches := g.Enumeration.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	items := make([]item, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[m[1]:end])
		if body == "" {
			continue
		}
		items = append(items, item{marker: text[m[2]:m[3]], text: body})
	}
	return items
}

// item is one enumerated sub-clause.
type item struct {
	marker string
	text   string
}

// cleanTitle trims whitespace and trailing heading punctuation.
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".:;–—- \t")
	return strings.TrimSpace(s)
}

// looksLikeTitle reports whether a line following a bare heading reads as a title.
func (g *Grammar) looksLikeTitle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if g.Boundary.MatchString(line) || g.Enumeration.MatchString(line) {
		return false
	}
	if len(strings.Fields(line)) > maxTitleWords {
		return false
	}
	if strings.ContainsAny(line[len(line)-1:], ".,;:") {
		return false
	}
	first := []rune(line)[0]
	return unicode.IsUpper(first) || unicode.IsDigit(first)
}
