// Package compliance checks free text against the processing rules of the statute.
package compliance

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sha1n/mcp-statute-server/internal/pii"
	"github.com/sha1n/mcp-statute-server/internal/statute"
)

// Severity ranks findings, recommendations and the overall risk of a document.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Status is the overall verdict of a check.
type Status string

const (
	StatusCompliant    Status = "COMPLIANT"
	StatusNonCompliant Status = "NON-COMPLIANT"
)

// Finding types.
const (
	FindingUnauthorizedProcessing = "unauthorized_processing"
	FindingSensitiveData          = "inadequate_spi_protection"
	FindingNoPurpose              = "lack_of_transparency"
	FindingExcessiveProcessing    = "excessive_processing"
	FindingInadequateSecurity     = "inadequate_security"
)

const (
	// excessiveThreshold is the PII count above which processing is flagged as disproportionate
	excessiveThreshold = 10
	// sensitiveRiskThreshold is the sensitive PII count above which risk is critical regardless of findings
	sensitiveRiskThreshold = 5
	maxAffected            = 5
	summaryLength          = 100
	excerptLength          = 200
)

// SectionSource resolves statute sections and their penalties by number.
// *statute.Indexer satisfies it.
type SectionSource interface {
	GetSection(number string) (statute.Section, error)
	GetPenalty(number string) (statute.PenaltySection, error)
}

// Sections maps each rule to the statute section it cites.
type Sections struct {
	Principles       string
	LawfulProcessing string
	Sensitive        string
	Rights           string
	Security         string
	Accountability   string
	// Penalties maps a finding type to the section that penalizes it.
	Penalties map[string]string
}

// DefaultSections returns the section numbers of the Data Privacy Act of 2012.
func DefaultSections() Sections {
	return Sections{
		Principles:       "11",
		LawfulProcessing: "12",
		Sensitive:        "13",
		Rights:           "16",
		Security:         "20",
		Accountability:   "21",
		Penalties: map[string]string{
			FindingUnauthorizedProcessing: "25",
			FindingSensitiveData:          "25",
			FindingInadequateSecurity:     "26",
			FindingExcessiveProcessing:    "28",
		},
	}
}

// Citation quotes the statute section a finding relies on.
type Citation struct {
	Section string `json:"section"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

// Finding is one detected violation.
type Finding struct {
	Section      string   `json:"section"`
	Type         string   `json:"type"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Severity     Severity `json:"severity"`
	Details      string   `json:"details"`
	AffectedData []string `json:"affected_data,omitempty"`
	// Citation is nil when the cited section is not in the loaded statute.
	Citation *Citation `json:"citation,omitempty"`
	// Penalty is nil when no penalty section is mapped or found for the finding type.
	Penalty *statute.PenaltySection `json:"penalty,omitempty"`
}

// Recommendation is a remediation step.
type Recommendation struct {
	Priority    Severity `json:"priority"`
	Action      string   `json:"action"`
	Description string   `json:"description"`
	Reference   string   `json:"section_reference"`
}

// Report is the result of checking one document.
type Report struct {
	Document        string           `json:"document_name"`
	CheckedAt       time.Time        `json:"analysis_date"`
	Status          Status           `json:"compliance_status"`
	RiskLevel       Severity         `json:"risk_level"`
	Findings        []Finding        `json:"violations"`
	Recommendations []Recommendation `json:"recommendations"`
	PII             pii.Summary      `json:"pii_summary"`
	Consent         []pii.Indicator  `json:"consent_indicators"`
	Purpose         []pii.Indicator  `json:"purpose_indicators"`
}

var insecurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bunencrypted\b`),
	regexp.MustCompile(`(?i)\bplain text\b`),
	regexp.MustCompile(`(?i)\bno encryption\b`),
	regexp.MustCompile(`(?i)\bunsecured\b`),
	regexp.MustCompile(`(?i)\bno password\b`),
	regexp.MustCompile(`(?i)\bno security\b`),
}

// Checker evaluates documents against the statute.
type Checker struct {
	source   SectionSource
	detector *pii.Detector
	sections Sections
	now      func() time.Time
}

// NewChecker creates a checker. A nil detector uses the default recognizers.
func NewChecker(source SectionSource, detector *pii.Detector, sections Sections) *Checker {
	if detector == nil {
		detector = pii.NewDetector()
	}
	return &Checker{
		source:   source,
		detector: detector,
		sections: sections,
		now:      time.Now,
	}
}

// cited is a resolved section; Citation is nil on a miss.
type cited struct {
	label    string
	title    string
	summary  string
	citation *Citation
}

// cite looks up a section. Only ErrNotFound is tolerated.
func (c *Checker) cite(number, fallbackTitle string) (cited, error) {
	ref := cited{
		label:   "Section " + number,
		title:   fallbackTitle,
		summary: "Section content not available",
	}
	s, err := c.source.GetSection(number)
	if errors.Is(err, statute.ErrNotFound) {
		return ref, nil
	}
	if err != nil {
		return ref, err
	}
	if s.Title != "" {
		ref.title = s.Title
	}
	ref.summary = summarizeSection(s.Body)
	ref.citation = &Citation{Section: s.Number, Title: s.Title, Excerpt: truncate(s.Body, excerptLength)}
	return ref, nil
}

// penalty resolves the penalty section for a finding type. Only ErrNotFound is tolerated.
func (c *Checker) penalty(findingType string) (*statute.PenaltySection, error) {
	number := c.sections.Penalties[findingType]
	if number == "" {
		return nil, nil
	}
	p, err := c.source.GetPenalty(number)
	if errors.Is(err, statute.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Check analyzes text. It fails only when the statute is unavailable.
func (c *Checker) Check(text, documentName string) (Report, error) {
	if documentName == "" {
		documentName = "Unknown Document"
	}

	matches := c.detector.Detect(text)
	summary := pii.Summarize(matches)
	consent := pii.ConsentIndicators(text)
	purpose := pii.PurposeIndicators(text)

	findings, err := c.findings(text, summary, consent, purpose)
	if err != nil {
		return Report{}, err
	}

	status := StatusCompliant
	if len(findings) > 0 {
		status = StatusNonCompliant
	}

	return Report{
		Document:        documentName,
		CheckedAt:       c.now(),
		Status:          status,
		RiskLevel:       assessRisk(findings, summary),
		Findings:        findings,
		Recommendations: c.recommend(findings, summary),
		PII:             summary,
		Consent:         consent,
		Purpose:         purpose,
	}, nil
}

func (c *Checker) findings(text string, sum pii.Summary, consent, purpose []pii.Indicator) ([]Finding, error) {
	lawful, err := c.cite(c.sections.LawfulProcessing, "Criteria for Lawful Processing of Personal Information")
	if err != nil {
		return nil, err
	}
	sensitive, err := c.cite(c.sections.Sensitive, "Sensitive Personal Information and Privileged Information")
	if err != nil {
		return nil, err
	}
	principles, err := c.cite(c.sections.Principles, "General Data Privacy Principles")
	if err != nil {
		return nil, err
	}
	security, err := c.cite(c.sections.Security, "Security of Personal Information")
	if err != nil {
		return nil, err
	}

	var out []Finding
	if sum.Total > 0 && len(consent) == 0 {
		out = append(out, Finding{
			Section:      lawful.label,
			Type:         FindingUnauthorizedProcessing,
			Title:        lawful.title,
			Description:  fmt.Sprintf("Personal information detected without evidence of consent or other lawful basis as required by %s", lawful.label),
			Severity:     SeverityHigh,
			Details:      fmt.Sprintf("Found %d PII instances without consent indicators. %s requires: %s", sum.Total, lawful.label, lawful.summary),
			AffectedData: affected(sum.Regular),
			Citation:     lawful.citation,
		})
	}

	if sum.SensitiveCount > 0 {
		out = append(out, Finding{
			Section:      sensitive.label,
			Type:         FindingSensitiveData,
			Title:        sensitive.title,
			Description:  fmt.Sprintf("Sensitive personal information detected without adequate protection measures as required by %s", sensitive.label),
			Severity:     SeverityCritical,
			Details:      fmt.Sprintf("Found %d sensitive PII instances. %s states: %s", sum.SensitiveCount, sensitive.label, sensitive.summary),
			AffectedData: affected(sum.Sensitive),
			Citation:     sensitive.citation,
		})
	}

	if sum.Total > 0 && len(purpose) == 0 {
		out = append(out, Finding{
			Section:     principles.label,
			Type:        FindingNoPurpose,
			Title:       principles.title,
			Description: "Personal information processing without clear purpose statement violates transparency principle",
			Severity:    SeverityMedium,
			Details:     fmt.Sprintf("No purpose statement found for data processing. %s requires: %s", principles.label, principles.summary),
			Citation:    principles.citation,
		})
	}

	if sum.Total > excessiveThreshold {
		out = append(out, Finding{
			Section:     principles.label,
			Type:        FindingExcessiveProcessing,
			Title:       principles.title,
			Description: "Potentially excessive personal information processing violates proportionality principle",
			Severity:    SeverityMedium,
			Details:     fmt.Sprintf("Large amount of PII detected (%d instances) may violate proportionality requirements", sum.Total),
			Citation:    principles.citation,
		})
	}

	for _, re := range insecurePatterns {
		m := re.FindString(text)
		if m == "" {
			continue
		}
		out = append(out, Finding{
			Section:     security.label,
			Type:        FindingInadequateSecurity,
			Title:       security.title,
			Description: fmt.Sprintf("Inadequate security measures for personal information as required by %s", security.label),
			Severity:    SeverityHigh,
			Details:     fmt.Sprintf("Security concern detected: %q. %s requires: %s", m, security.label, security.summary),
			Citation:    security.citation,
		})
		break
	}

	for i := range out {
		p, err := c.penalty(out[i].Type)
		if err != nil {
			return nil, err
		}
		out[i].Penalty = p
	}
	return out, nil
}

func assessRisk(findings []Finding, sum pii.Summary) Severity {
	if len(findings) == 0 {
		return SeverityLow
	}
	critical, high := 0, 0
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			critical++
		case SeverityHigh:
			high++
		}
	}
	switch {
	case critical > 0 || sum.SensitiveCount > sensitiveRiskThreshold:
		return SeverityCritical
	case high > 0 || sum.Total > excessiveThreshold:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

func (c *Checker) recommend(findings []Finding, sum pii.Summary) []Recommendation {
	seen := make(map[string]bool, len(findings))
	for _, f := range findings {
		seen[f.Type] = true
	}
	ref := func(number string) string { return "Section " + number }

	var out []Recommendation
	if seen[FindingUnauthorizedProcessing] {
		out = append(out, Recommendation{SeverityHigh, "Obtain proper consent",
			"Implement consent mechanisms before processing personal information", ref(c.sections.LawfulProcessing)})
	}
	if seen[FindingSensitiveData] {
		out = append(out, Recommendation{SeverityCritical, "Enhance SPI protection",
			"Implement additional security measures for sensitive personal information",
			ref(c.sections.Sensitive) + ", " + ref(c.sections.Security)})
	}
	if seen[FindingNoPurpose] {
		out = append(out, Recommendation{SeverityMedium, "Add purpose statements",
			"Clearly state the purpose for processing personal information", ref(c.sections.Principles)})
	}
	if seen[FindingExcessiveProcessing] {
		out = append(out, Recommendation{SeverityMedium, "Review data minimization",
			"Ensure only necessary personal information is processed", ref(c.sections.Principles)})
	}
	if seen[FindingInadequateSecurity] {
		out = append(out, Recommendation{SeverityHigh, "Implement security measures",
			"Deploy appropriate technical and organizational security measures", ref(c.sections.Security)})
	}
	if sum.Total > 0 {
		out = append(out, Recommendation{SeverityLow, "Conduct privacy impact assessment",
			"Perform a comprehensive privacy impact assessment for this document", "General compliance"})
	}
	return out
}

func affected(matches []pii.Match) []string {
	var out []string
	for i, m := range matches {
		if i == maxAffected {
			break
		}
		out = append(out, m.Text)
	}
	return out
}

// summarizeSection returns the first sentence of a section body, capped in length.
func summarizeSection(body string) string {
	first, _, _ := strings.Cut(strings.Join(strings.Fields(body), " "), ". ")
	return truncate(first, summaryLength)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
