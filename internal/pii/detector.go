// Package pii detects personal information in free text using named regex recognizers.
package pii

import (
	"regexp"
	"sort"
)

// Match is one detected occurrence. Start and End are byte offsets into the scanned text.
type Match struct {
	Entity    string  `json:"entity_type"`
	Pattern   string  `json:"pattern"`
	Text      string  `json:"text"`
	Start     int     `json:"start"`
	End       int     `json:"end"`
	Score     float64 `json:"confidence"`
	Sensitive bool    `json:"is_sensitive"`
}

func (m Match) overlaps(o Match) bool {
	return m.Start < o.End && o.Start < m.End
}

// Summary splits matches into regular and sensitive personal information.
type Summary struct {
	Regular        []Match        `json:"regular_pii"`
	Sensitive      []Match        `json:"sensitive_pii"`
	Total          int            `json:"total_pii_count"`
	RegularCount   int            `json:"regular_count"`
	SensitiveCount int            `json:"sensitive_count"`
	ByEntity       map[string]int `json:"by_entity"`
}

// Detector runs a fixed set of recognizers over text. It is safe for concurrent use.
type Detector struct {
	patterns []Pattern
}

// NewDetector creates a detector with the default recognizers.
func NewDetector() *Detector {
	return NewDetectorWithPatterns(DefaultPatterns())
}

// NewDetectorWithPatterns creates a detector with custom recognizers.
func NewDetectorWithPatterns(patterns []Pattern) *Detector {
	return &Detector{patterns: append([]Pattern(nil), patterns...)}
}

// Patterns returns the detector's recognizers.
func (d *Detector) Patterns() []Pattern {
	return append([]Pattern(nil), d.patterns...)
}

// Detect returns all matches ordered by offset. Where matches overlap, the higher
// score wins, then the longer match, then the earlier one.
func (d *Detector) Detect(text string) []Match {
	var candidates []Match
	for _, p := range d.patterns {
		if p.Regex == nil {
			continue
		}
		for _, loc := range p.Regex.FindAllStringIndex(text, -1) {
			s := text[loc[0]:loc[1]]
			if p.Validate != nil && !p.Validate(s) {
				continue
			}
			candidates = append(candidates, Match{
				Entity:    p.Entity,
				Pattern:   p.Name,
				Text:      s,
				Start:     loc[0],
				End:       loc[1],
				Score:     p.Score,
				Sensitive: p.Sensitive,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if la, lb := a.End-a.Start, b.End-b.Start; la != lb {
			return la > lb
		}
		return a.Start < b.Start
	})

	var kept []Match
	for _, c := range candidates {
		clash := false
		for _, k := range kept {
			if c.overlaps(k) {
				clash = true
				break
			}
		}
		if !clash {
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// Summarize categorizes matches.
func Summarize(matches []Match) Summary {
	sum := Summary{ByEntity: make(map[string]int)}
	for _, m := range matches {
		if m.Sensitive {
			sum.Sensitive = append(sum.Sensitive, m)
		} else {
			sum.Regular = append(sum.Regular, m)
		}
		sum.ByEntity[m.Entity]++
	}
	sum.Total = len(matches)
	sum.RegularCount = len(sum.Regular)
	sum.SensitiveCount = len(sum.Sensitive)
	return sum
}

// Indicator is a phrase signalling consent or a stated purpose.
type Indicator struct {
	Text    string `json:"text"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Pattern string `json:"pattern"`
}

var (
	consentPatterns = compileAll(
		`(?i)\bconsent\b`, `(?i)\bagree\b`, `(?i)\bauthorize\b`, `(?i)\bpermit\b`,
		`(?i)\ballow\b`, `(?i)\bapprove\b`, `(?i)\baccept\b`, `(?i)\bpayag\b`,
		`(?i)\bsang-ayon\b`, `(?i)\bpahintulot\b`,
	)
	purposePatterns = compileAll(
		`(?i)\bpurpose\b`, `(?i)\bintended for\b`, `(?i)\bused for\b`,
		`(?i)\bprocessed for\b`, `(?i)\blayunin\b`, `(?i)\bgagamitin\b`,
	)
)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

func findIndicators(text string, patterns []*regexp.Regexp) []Indicator {
	var found []Indicator
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			found = append(found, Indicator{
				Text:    text[loc[0]:loc[1]],
				Start:   loc[0],
				End:     loc[1],
				Pattern: re.String(),
			})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].Start < found[j].Start })
	return found
}

// ConsentIndicators finds consent language (English and Filipino).
func ConsentIndicators(text string) []Indicator {
	return findIndicators(text, consentPatterns)
}

// PurposeIndicators finds purpose statements (English and Filipino).
func PurposeIndicators(text string) []Indicator {
	return findIndicators(text, purposePatterns)
}
