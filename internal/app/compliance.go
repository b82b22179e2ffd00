package app

import (
	"github.com/sha1n/mcp-statute-server/internal/compliance"
	"github.com/sha1n/mcp-statute-server/internal/config"
	"github.com/sha1n/mcp-statute-server/internal/statute"
)

// complianceSections resolves the sections cited by compliance checks.
// Unset principles and rights take the first section of the statute layout;
// anything still unset keeps the default.
func complianceSections(c config.ComplianceSettings, layout statute.Layout) compliance.Sections {
	s := compliance.DefaultSections()

	s.Principles = pick(c.Principles, first(layout.Principles), s.Principles)
	s.Rights = pick(c.Rights, first(layout.Rights), s.Rights)
	s.LawfulProcessing = pick(c.LawfulProcessing, s.LawfulProcessing)
	s.Sensitive = pick(c.Sensitive, s.Sensitive)
	s.Security = pick(c.Security, s.Security)
	s.Accountability = pick(c.Accountability, s.Accountability)

	p := s.Penalties
	p[compliance.FindingUnauthorizedProcessing] = pick(c.Penalties.UnauthorizedProcessing, p[compliance.FindingUnauthorizedProcessing])
	p[compliance.FindingSensitiveData] = pick(c.Penalties.SensitiveData, p[compliance.FindingSensitiveData])
	p[compliance.FindingInadequateSecurity] = pick(c.Penalties.InadequateSecurity, p[compliance.FindingInadequateSecurity])
	p[compliance.FindingExcessiveProcessing] = pick(c.Penalties.ExcessiveProcessing, p[compliance.FindingExcessiveProcessing])
	return s
}

// pick returns the first non-empty value.
func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func first(numbers []string) string {
	if len(numbers) == 0 {
		return ""
	}
	return numbers[0]
}
