package compliance

import (
	"errors"
	"strings"

	"github.com/sha1n/mcp-statute-server/internal/statute"
)

// RuleSet is the list of obligations read from one section.
type RuleSet struct {
	Section string   `json:"section" yaml:"section"`
	Name    string   `json:"name" yaml:"name"`
	Rules   []string `json:"rules" yaml:"rules"`
}

// keywordRule emits Rule when the section text contains every keyword.
type keywordRule struct {
	keywords []string
	rule     string
}

type ruleSource struct {
	section string
	name    string
	rules   []keywordRule
}

func (s Sections) ruleSources() []ruleSource {
	return []ruleSource{
		{s.LawfulProcessing, "Lawful Processing Criteria", []keywordRule{
			{[]string{"consent"}, "Data subject consent required for processing"},
			{[]string{"contract"}, "Processing allowed for contract fulfillment"},
			{[]string{"legal obligation"}, "Processing required for legal compliance"},
			{[]string{"vital interests"}, "Processing allowed to protect vital interests"},
			{[]string{"legitimate interests"}, "Processing allowed for legitimate interests"},
		}},
		{s.Sensitive, "Sensitive Information Processing", []keywordRule{
			{[]string{"prohibited"}, "Sensitive information processing generally prohibited"},
			{[]string{"consent"}, "Explicit consent required for sensitive information"},
			{[]string{"medical"}, "Medical processing allowed with safeguards"},
		}},
		{s.Rights, "Data Subject Rights", []keywordRule{
			{[]string{"informed"}, "Data subjects must be informed of processing"},
			{[]string{"access"}, "Data subjects have right to access their data"},
			{[]string{"correct"}, "Data subjects can correct inaccurate information"},
			{[]string{"erasure"}, "Data subjects can request data deletion"},
		}},
		{s.Security, "Security Requirements", []keywordRule{
			{[]string{"reasonable", "appropriate"}, "Implement reasonable and appropriate security measures"},
			{[]string{"organizational"}, "Implement organizational security measures"},
			{[]string{"physical"}, "Implement physical security measures"},
			{[]string{"technical"}, "Implement technical security measures"},
			{[]string{"breach"}, "Notify Commission and data subjects of breaches"},
		}},
		{s.Accountability, "Accountability Principle", []keywordRule{
			{[]string{"responsible"}, "Controllers responsible for data under their control"},
			{[]string{"third party"}, "Ensure third party processors provide adequate protection"},
		}},
	}
}

// DeriveRules reads the obligations stated by the key sections. Sections missing
// from the statute are skipped.
func DeriveRules(source SectionSource, sections Sections) ([]RuleSet, error) {
	var out []RuleSet
	for _, rs := range sections.ruleSources() {
		if rs.section == "" {
			continue
		}
		s, err := source.GetSection(rs.section)
		if errors.Is(err, statute.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		text := strings.ToLower(s.Title + " " + s.Body)
		set := RuleSet{Section: s.Number, Name: rs.name}
	rules:
		for _, r := range rs.rules {
			for _, k := range r.keywords {
				if !strings.Contains(text, k) {
					continue rules
				}
			}
			set.Rules = append(set.Rules, r.rule)
		}
		out = append(out, set)
	}
	return out, nil
}
