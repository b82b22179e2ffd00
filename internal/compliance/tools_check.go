package compliance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-statute-server/internal/statute"
)

// maxCheckSize bounds the text accepted by check_compliance.
const maxCheckSize = 1 << 20

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func statuteError(err error) *mcp.CallToolResult {
	if errors.Is(err, statute.ErrNotLoaded) {
		return toolError("The statute is not loaded yet. Please try again later.")
	}
	return toolError("Compliance check failed: %s", err)
}

// CheckArgument defines compliance check parameters.
type CheckArgument struct {
	Text     string `json:"text" jsonschema_description:"Document text to check for personal information and privacy violations"`
	Document string `json:"document,omitempty" jsonschema_description:"Optional document name used in the report"`
}

// CheckHandler handles the check_compliance MCP tool.
type CheckHandler struct {
	checker *Checker
}

// NewCheckHandler creates a new compliance check handler.
func NewCheckHandler(checker *Checker) *CheckHandler {
	return &CheckHandler{checker: checker}
}

// Handle runs the check and renders the report.
func (h *CheckHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args CheckArgument) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Text) == "" {
		return toolError("Text cannot be empty"), nil, nil
	}
	if len(args.Text) > maxCheckSize {
		return toolError("Text exceeds %d bytes", maxCheckSize), nil, nil
	}

	report, err := h.checker.Check(args.Text, args.Document)
	if err != nil {
		return statuteError(err), nil, nil
	}
	return toolText(FormatReport(report)), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *CheckHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "check_compliance",
		Description: "Check a document for personal information and likely Data Privacy Act violations, citing the relevant statute sections",
	}
}

// FormatReport renders a report as markdown.
func FormatReport(r Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Compliance report: %s\n\n", r.Document)
	fmt.Fprintf(&sb, "**Status**: %s\n", r.Status)
	fmt.Fprintf(&sb, "**Risk level**: %s\n", r.RiskLevel)
	fmt.Fprintf(&sb, "**PII found**: %d (%d sensitive)\n", r.PII.Total, r.PII.SensitiveCount)
	fmt.Fprintf(&sb, "**Consent indicators**: %d, **Purpose indicators**: %d\n", len(r.Consent), len(r.Purpose))

	if len(r.Findings) > 0 {
		sb.WriteString("\n## Findings\n")
		for i, f := range r.Findings {
			fmt.Fprintf(&sb, "\n### %d. %s: %s [%s]\n", i+1, f.Section, f.Title, f.Severity)
			fmt.Fprintf(&sb, "%s\n", f.Description)
			fmt.Fprintf(&sb, "%s\n", f.Details)
			if len(f.AffectedData) > 0 {
				fmt.Fprintf(&sb, "Affected: %s\n", strings.Join(f.AffectedData, ", "))
			}
			if f.Citation != nil {
				fmt.Fprintf(&sb, "> %s\n", strings.ReplaceAll(f.Citation.Excerpt, "\n", " "))
			}
			if f.Penalty != nil {
				fmt.Fprintf(&sb, "Penalty: %s\n", formatPenalty(*f.Penalty))
			}
		}
	}

	if len(r.Recommendations) > 0 {
		sb.WriteString("\n## Recommendations\n\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&sb, "- [%s] %s: %s (%s)\n", rec.Priority, rec.Action, rec.Description, rec.Reference)
		}
	}
	return sb.String()
}

// formatPenalty renders "Section 25 (Title): imprisonment 1 year to 3 years; fine PHP 500,000.00".
func formatPenalty(p statute.PenaltySection) string {
	label := "Section " + p.Section
	if p.Title != "" {
		label += " (" + p.Title + ")"
	}
	var parts []string
	for _, r := range p.Imprisonment {
		parts = append(parts, fmt.Sprintf("imprisonment %s to %s", r.Min, r.Max))
	}
	for _, f := range p.Fines {
		parts = append(parts, "fine PHP "+statute.FormatAmount(f.Amount))
	}
	if len(parts) == 0 {
		return label
	}
	return label + ": " + strings.Join(parts, "; ")
}

// RulesArgument takes no parameters.
type RulesArgument struct{}

// RulesHandler handles the compliance_rules MCP tool.
type RulesHandler struct {
	source   SectionSource
	sections Sections
}

// NewRulesHandler creates a new rules handler.
func NewRulesHandler(source SectionSource, sections Sections) *RulesHandler {
	return &RulesHandler{source: source, sections: sections}
}

// Handle lists the obligations derived from the loaded statute.
func (h *RulesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args RulesArgument) (*mcp.CallToolResult, any, error) {
	sets, err := DeriveRules(h.source, h.sections)
	if err != nil {
		return statuteError(err), nil, nil
	}
	if len(sets) == 0 {
		return toolText("No compliance rules could be derived from the loaded statute."), nil, nil
	}

	var sb strings.Builder
	for _, set := range sets {
		fmt.Fprintf(&sb, "### Section %s: %s\n", set.Section, set.Name)
		if len(set.Rules) == 0 {
			sb.WriteString("- (no rules recognized)\n")
		}
		for _, rule := range set.Rules {
			fmt.Fprintf(&sb, "- %s\n", rule)
		}
		sb.WriteString("\n")
	}
	return toolText(sb.String()), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *RulesHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "compliance_rules",
		Description: "List the compliance obligations derived from the key sections of the loaded statute",
	}
}

// RegisterTools registers the compliance tools with an MCP server.
func RegisterTools(server *mcp.Server, source SectionSource, checker *Checker, sections Sections) {
	check := NewCheckHandler(checker)
	mcp.AddTool(server, check.GetToolDefinition(), check.Handle)

	rules := NewRulesHandler(source, sections)
	mcp.AddTool(server, rules.GetToolDefinition(), rules.Handle)
}
