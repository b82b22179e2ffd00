package pii

import (
	"regexp"
	"strings"
)

// Entity types reported by the default recognizers.
const (
	EntityEmail          = "EMAIL_ADDRESS"
	EntityPhone          = "PH_PHONE"
	EntityLandline       = "PH_LANDLINE"
	EntityCreditCard     = "CREDIT_CARD"
	EntityIPAddress      = "IP_ADDRESS"
	EntityTIN            = "PH_TIN"
	EntitySSS            = "PH_SSS"
	EntityPhilHealth     = "PH_PHILHEALTH"
	EntityUMID           = "PH_UMID"
	EntityPassport       = "PH_PASSPORT"
	EntityDriversLicense = "PH_DRIVERS_LICENSE"
	EntityHealth         = "HEALTH_INFO"
	EntityReligious      = "RELIGIOUS_INFO"
	EntityPolitical      = "POLITICAL_INFO"
	EntityFinancial      = "FINANCIAL_INFO"
)

// Pattern is a named recognizer for one entity type.
type Pattern struct {
	Name   string
	Entity string
	Regex  *regexp.Regexp
	// Score is the confidence assigned to every match, between 0 and 1.
	Score float64
	// Sensitive marks entities that the statute treats as sensitive personal information.
	Sensitive bool
	// Validate optionally rejects regex matches, e.g. card numbers failing the Luhn check.
	Validate func(string) bool
}

var (
	healthKeywords = []string{
		"diabetes", "diabetic", "hypertension", "cancer", "HIV", "AIDS",
		"mental health", "depression", "anxiety", "medical record",
		"prescription", "diagnosis", "treatment", "surgery", "hospital",
		"may sakit", "ospital", "gamot", "operasyon", "doktor",
	}
	religiousKeywords = []string{
		"Catholic", "Protestant", "Muslim", "Buddhist", "Hindu", "Iglesia",
		"Born Again", "Seventh Day Adventist", "religion", "faith",
		"relihiyon", "pananampalataya", "simbahan", "mosque", "temple",
	}
	politicalKeywords = []string{
		"political party", "candidate", "election", "vote", "campaign",
		"partido", "halalan", "boto", "kandidato", "pulitika",
	}
	financialKeywords = []string{
		"salary", "income", "bank account", "credit card", "loan", "debt",
		"sweldo", "kita", "utang", "bangko", "pera", "salapi",
	}
)

// keywordRegex matches any of the words as a whole word, case-insensitively.
func keywordRegex(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// DefaultPatterns returns the built-in recognizers for general and Philippine identifiers.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Name: "email", Entity: EntityEmail, Score: 1.0,
			Regex: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
		{Name: "ph_phone", Entity: EntityPhone, Score: 0.8,
			Regex: regexp.MustCompile(`(?:\+63|\b0)\d{10}\b`)},
		{Name: "ph_landline", Entity: EntityLandline, Score: 0.7,
			Regex: regexp.MustCompile(`\(\d{2,3}\)\s?\d{3}-\d{4}\b`)},
		{Name: "credit_card", Entity: EntityCreditCard, Score: 0.9,
			Regex:    regexp.MustCompile(`\b(?:\d{4}[- ]?){3}\d{4}\b`),
			Validate: luhnValid},
		{Name: "ipv4", Entity: EntityIPAddress, Score: 0.6,
			Regex: regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\.){3}(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\b`)},
		{Name: "ph_tin", Entity: EntityTIN, Score: 0.9, Sensitive: true,
			Regex: regexp.MustCompile(`\b\d{3}-\d{3}-\d{3}-\d{3}\b`)},
		{Name: "ph_sss", Entity: EntitySSS, Score: 0.9, Sensitive: true,
			Regex: regexp.MustCompile(`\b\d{2}-\d{7}-\d\b`)},
		{Name: "ph_philhealth", Entity: EntityPhilHealth, Score: 0.9, Sensitive: true,
			Regex: regexp.MustCompile(`\b\d{2}-\d{9}-\d\b`)},
		{Name: "ph_umid", Entity: EntityUMID, Score: 0.9, Sensitive: true,
			Regex: regexp.MustCompile(`\b\d{4}-\d{7}-\d\b`)},
		{Name: "ph_passport", Entity: EntityPassport, Score: 0.7, Sensitive: true,
			Regex: regexp.MustCompile(`\b[A-Z]{2}\d{7}\b`)},
		{Name: "ph_drivers_license", Entity: EntityDriversLicense, Score: 0.8, Sensitive: true,
			Regex: regexp.MustCompile(`\b[A-Z]\d{2}-\d{2}-\d{6}\b`)},
		{Name: "health", Entity: EntityHealth, Score: 0.7, Sensitive: true,
			Regex: keywordRegex(healthKeywords)},
		{Name: "religious", Entity: EntityReligious, Score: 0.7, Sensitive: true,
			Regex: keywordRegex(religiousKeywords)},
		{Name: "political", Entity: EntityPolitical, Score: 0.6, Sensitive: true,
			Regex: keywordRegex(politicalKeywords)},
		{Name: "financial", Entity: EntityFinancial, Score: 0.6, Sensitive: true,
			Regex: keywordRegex(financialKeywords)},
	}
}

// luhnValid reports whether the digits of s pass the Luhn checksum.
func luhnValid(s string) bool {
	sum, n := 0, 0
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c < '0' || c > '9' {
			continue
		}
		d := int(c - '0')
		if n%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		n++
	}
	return n > 0 && sum%10 == 0
}
