package statute

import (
	"fmt"
	"strings"
)

// segmentation is the result of splitting a statute into sections.
type segmentation struct {
	preamble string
	sections []Section
	notes    []string
}

// segment splits raw text into a preamble and numbered sections.
// Duplicate numbers are last-wins; empty bodies are dropped. Both are noted.
func (g *Grammar) segment(raw string) (segmentation, int) {
	headings := g.scanHeadings(raw)
	if len(headings) == 0 {
		return segmentation{preamble: strings.TrimSpace(raw)}, 0
	}

	seg := segmentation{preamble: strings.TrimSpace(raw[:headings[0].lineStart])}
	byNumber := make(map[string]int)

	for i, h := range headings {
		end := len(raw)
		if i+1 < len(headings) {
			end = headings[i+1].lineStart
		}

		title, bodyStart := g.titleAndBodyStart(raw, h, end)
		body := ""
		if bodyStart < end {
			body = strings.TrimSpace(raw[bodyStart:end])
		}

		if body == "" {
			seg.notes = append(seg.notes, fmt.Sprintf("section %s dropped: empty body", h.number))
			continue
		}

		s := Section{Number: h.number, Title: title, Body: body}
		if prev, dup := byNumber[h.number]; dup {
			seg.notes = append(seg.notes, fmt.Sprintf("section %s duplicated: later block replaces earlier", h.number))
			seg.sections = append(seg.sections[:prev], seg.sections[prev+1:]...)
			for n, idx := range byNumber {
				if idx > prev {
					byNumber[n] = idx - 1
				}
			}
		}
		byNumber[h.number] = len(seg.sections)
		seg.sections = append(seg.sections, s)
	}

	return seg, len(headings)
}

// scanHeadings walks raw line by line and returns every boundary line.
func (g *Grammar) scanHeadings(raw string) []heading {
	var headings []heading
	offset := 0
	for offset < len(raw) {
		lineEnd := len(raw)
		next := len(raw)
		if nl := strings.IndexByte(raw[offset:], '\n'); nl >= 0 {
			lineEnd = offset + nl
			next = lineEnd + 1
		}
		line := strings.TrimRight(raw[offset:lineEnd], "\r")

		if h, ok := g.matchHeading(line, offset, next); ok {
			headings = append(headings, h)
		}
		offset = next
	}
	return headings
}

// titleAndBodyStart resolves a heading's title and the offset where its body begins.
func (g *Grammar) titleAndBodyStart(raw string, h heading, end int) (string, int) {
	rest := strings.TrimSpace(h.rest)
	if rest != "" {
		if m := titleSeparator.FindStringSubmatchIndex(h.rest); m != nil {
			return cleanTitle(h.rest[m[2]:m[3]]), h.restStart + m[4]
		}
		// Title and body on one line without a dash: the first sentence is the title.
		if m := sentenceSeparator.FindStringSubmatchIndex(h.rest); m != nil {
			if title := h.rest[m[2]:m[3]]; len(strings.Fields(title)) <= maxTitleWords {
				return cleanTitle(title), h.restStart + m[4]
			}
		}
		// A long heading line with nothing below it is body text, not a title.
		if len(strings.Fields(rest)) > maxTitleWords && strings.TrimSpace(raw[h.lineEnd:end]) == "" {
			return "", h.restStart
		}
		return cleanTitle(rest), h.lineEnd
	}

	// Bare heading: the next non-blank line may carry the title.
	offset := h.lineEnd
	for offset < end {
		lineEnd := end
		next := end
		if nl := strings.IndexByte(raw[offset:end], '\n'); nl >= 0 {
			lineEnd = offset + nl
			next = lineEnd + 1
		}
		line := strings.TrimSpace(raw[offset:lineEnd])
		if line == "" {
			offset = next
			continue
		}
		// A title never consumes the whole body.
		if g.looksLikeTitle(line) && strings.TrimSpace(raw[next:end]) != "" {
			return cleanTitle(line), next
		}
		break
	}
	return "", h.lineEnd
}
