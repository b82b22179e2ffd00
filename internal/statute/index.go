package statute

import (
	"sort"
	"strconv"
	"strings"
)

// SearchIndex maps a normalized token to the sections containing it and the
// number of occurrences per section.
type SearchIndex struct {
	postings  map[string]map[string]int
	stopWords map[string]struct{}
}

// buildIndex indexes the title and body of every section.
func buildIndex(sections []Section, stopWords map[string]struct{}) *SearchIndex {
	idx := &SearchIndex{
		postings:  make(map[string]map[string]int),
		stopWords: stopWords,
	}
	for _, s := range sections {
		for _, tok := range Tokenize(s.Title+"\n"+s.Body, stopWords) {
			p, ok := idx.postings[tok]
			if !ok {
				p = make(map[string]int)
				idx.postings[tok] = p
			}
			p[s.Number]++
		}
	}
	return idx
}

// Terms returns the number of distinct indexed tokens.
func (x *SearchIndex) Terms() int {
	if x == nil {
		return 0
	}
	return len(x.postings)
}

// Sections returns the section numbers containing token, in ascending order.
func (x *SearchIndex) Sections(token string) []string {
	if x == nil {
		return nil
	}
	p := x.postings[strings.ToLower(token)]
	out := make([]string, 0, len(p))
	for n := range p {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return compareSectionNumbers(out[i], out[j]) < 0 })
	return out
}

// Count returns how often token occurs in a section.
func (x *SearchIndex) Count(token, section string) int {
	if x == nil {
		return 0
	}
	return x.postings[strings.ToLower(token)][section]
}

// Postings returns a copy of the full token index, for export.
func (x *SearchIndex) Postings() map[string]map[string]int {
	out := make(map[string]map[string]int, x.Terms())
	if x == nil {
		return out
	}
	for tok, p := range x.postings {
		cp := make(map[string]int, len(p))
		for n, c := range p {
			cp[n] = c
		}
		out[tok] = cp
	}
	return out
}

// Search tokenizes query like the index and ranks sections by accumulated
// occurrence counts. Ties are broken by ascending section number.
func (x *SearchIndex) Search(query string) []SearchHit {
	hits := []SearchHit{}
	if x == nil {
		return hits
	}

	scores := make(map[string]int)
	seen := make(map[string]struct{})
	for _, tok := range Tokenize(query, x.stopWords) {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		for n, c := range x.postings[tok] {
			scores[n] += c
		}
	}

	for n, score := range scores {
		hits = append(hits, SearchHit{Section: n, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return compareSectionNumbers(hits[i].Section, hits[j].Section) < 0
	})
	return hits
}

// compareSectionNumbers orders "2" < "10" < "10A"; non-numeric numbers compare lexically.
func compareSectionNumbers(a, b string) int {
	an, asuf := splitNumber(a)
	bn, bsuf := splitNumber(b)
	if an >= 0 && bn >= 0 {
		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
		return strings.Compare(asuf, bsuf)
	}
	return strings.Compare(a, b)
}

// splitNumber splits "12A" into 12 and "A". The number is -1 when there is no leading digit.
func splitNumber(s string) (int, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return -1, s
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return -1, s
	}
	return n, s[i:]
}
