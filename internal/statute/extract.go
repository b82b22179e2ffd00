package statute

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	// maxTermWords bounds a defined term, longer captures are sentence fragments
	maxTermWords = 10
)

// extractDefinitions reads "(a) Term means ..." clauses from a definitions section.
// Sections without enumeration markers are read line by line.
func (g *Grammar) extractDefinitions(s Section) []Definition {
	items := g.enumerate(s.Body)
	if len(items) == 0 {
		for _, line := range strings.Split(s.Body, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				items = append(items, item{text: line})
			}
		}
	}

	var defs []Definition
	for _, it := range items {
		text := collapseSpace(it.text)
		m := definitionPattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		term := strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), `"“”'‘’`))
		if term == "" || len(strings.Fields(term)) > maxTermWords {
			continue
		}
		defs = append(defs, Definition{
			Term:    term,
			Key:     normalizeTerm(term),
			Text:    text,
			Meaning: strings.TrimSpace(strings.TrimRight(strings.TrimSpace(m[3]), ";")),
			Marker:  it.marker,
			Section: s.Number,
		})
	}
	return defs
}

// extractClauses splits a section into its enumerated items.
func (g *Grammar) extractClauses(s Section) []Clause {
	items := g.enumerate(s.Body)
	clauses := make([]Clause, 0, len(items))
	for _, it := range items {
		text := collapseSpace(it.text)
		clauses = append(clauses, Clause{
			Marker:  it.marker,
			Text:    text,
			Summary: summarize(text),
			Section: s.Number,
		})
	}
	return clauses
}

// extractPenalty pulls fine amounts and imprisonment ranges out of a section.
func extractPenalty(s Section) PenaltySection {
	text := collapseSpace(s.Body)
	return PenaltySection{
		Section:      s.Number,
		Title:        s.Title,
		Fines:        extractFines(text),
		Imprisonment: extractImprisonment(text),
	}
}

// extractFines returns currency amounts in order of appearance.
func extractFines(text string) []Fine {
	type span struct {
		start, end int
		fine       Fine
	}
	var spans []span
	for _, re := range []*regexp.Regexp{currencyPattern, pesosPattern} {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			amount, err := strconv.ParseFloat(strings.ReplaceAll(text[m[2]:m[3]], ",", ""), 64)
			if err != nil {
				continue
			}
			spans = append(spans, span{m[0], m[1], Fine{Amount: amount, Raw: strings.TrimSpace(text[m[0]:m[1]])}})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	fines := []Fine{}
	lastEnd := -1
	for _, s := range spans {
		if s.start < lastEnd {
			continue
		}
		fines = append(fines, s.fine)
		lastEnd = s.end
	}
	return fines
}

// extractImprisonment returns "ranging from X to Y" imprisonment terms.
func extractImprisonment(text string) []TermRange {
	ranges := []TermRange{}
	for _, m := range imprisonmentPattern.FindAllStringSubmatch(text, -1) {
		lo, okLo := parseTerm(m[1])
		hi, okHi := parseTerm(m[2])
		if !okLo || !okHi {
			continue
		}
		ranges = append(ranges, TermRange{Min: lo, Max: hi, Raw: strings.TrimSpace(m[0])})
	}
	return ranges
}

// parseTerm reads "three (3) years", "6 months" or "one year".
func parseTerm(s string) (Term, bool) {
	m := termPattern.FindStringSubmatch(s)
	if m == nil {
		return Term{}, false
	}

	value := -1
	switch {
	case m[1] != "":
		value, _ = strconv.Atoi(m[1])
	case m[3] != "":
		value, _ = strconv.Atoi(m[3])
	case m[2] != "":
		if v, ok := numberWords[strings.ToLower(m[2])]; ok {
			value = v
		}
	}
	if value < 0 {
		return Term{}, false
	}

	unit := strings.TrimSuffix(strings.ToLower(m[4]), "s")
	return Term{Value: value, Unit: unit}, true
}

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7,
	"eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12, "fifteen": 15,
	"twenty": 20, "thirty": 30,
}

// summarize returns text up to its first ';' or ':'.
func summarize(text string) string {
	if i := strings.IndexAny(text, ";:"); i > 0 {
		return strings.TrimSpace(text[:i])
	}
	return strings.TrimSpace(strings.TrimSuffix(text, "."))
}

// collapseSpace joins runs of whitespace into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
