package kb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-statute-server/internal/statute"
)

// notReadyMessage is returned by every tool until the statute is loaded
const notReadyMessage = "The statute is not loaded yet. Please try again later."

// errorResult builds a tool-level error result.
func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
		IsError: true,
	}
}

// textResult builds a successful tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// lookupFailure maps a lookup error to a tool result. NotFound is a regular answer.
func lookupFailure(err error, what string) *mcp.CallToolResult {
	switch {
	case errors.Is(err, statute.ErrNotLoaded):
		return errorResult(notReadyMessage)
	case errors.Is(err, statute.ErrNotFound):
		return textResult(fmt.Sprintf("No %s found.", what))
	default:
		return errorResult("Lookup failed: %s", err)
	}
}

// formatSectionHeading renders "Section 3. Definition of Terms".
func formatSectionHeading(number, title string) string {
	if title == "" {
		return "Section " + number
	}
	return fmt.Sprintf("Section %s. %s", number, title)
}

// SectionArgument defines section lookup parameters.
type SectionArgument struct {
	Number string `json:"number" jsonschema_description:"Section number (e.g., 3, 16, 12A)"`
}

// SectionHandler handles the get_section MCP tool.
type SectionHandler struct {
	service *Service
}

// NewSectionHandler creates a new section handler.
func NewSectionHandler(service *Service) *SectionHandler {
	return &SectionHandler{service: service}
}

// Handle returns the full text of a section.
func (h *SectionHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SectionArgument) (*mcp.CallToolResult, any, error) {
	number := strings.TrimSpace(args.Number)
	if number == "" {
		return errorResult("Section number cannot be empty"), nil, nil
	}

	s, err := h.service.Indexer().GetSection(number)
	if err != nil {
		return lookupFailure(err, fmt.Sprintf("section %q", number)), nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", formatSectionHeading(s.Number, s.Title))
	sb.WriteString(s.Body)
	return textResult(sb.String()), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *SectionHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_section",
		Description: "Get the full text of a statute section by its number",
	}
}

// DefinitionArgument defines definition lookup parameters.
type DefinitionArgument struct {
	Term string `json:"term,omitempty" jsonschema_description:"Defined term, case-insensitive (e.g., consent, personal information)"`
}

// DefinitionHandler handles the get_definition MCP tool.
type DefinitionHandler struct {
	service *Service
}

// NewDefinitionHandler creates a new definition handler.
func NewDefinitionHandler(service *Service) *DefinitionHandler {
	return &DefinitionHandler{service: service}
}

// Handle returns the defining clause of a term. Without a term it lists every defined term.
func (h *DefinitionHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args DefinitionArgument) (*mcp.CallToolResult, any, error) {
	term := strings.TrimSpace(args.Term)
	if term == "" {
		doc, err := h.service.Document()
		if err != nil {
			return lookupFailure(err, "definitions"), nil, nil
		}
		defs := doc.Definitions()
		if len(defs) == 0 {
			return textResult("The statute defines no terms."), nil, nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d defined terms:\n\n", len(defs))
		for _, d := range defs {
			fmt.Fprintf(&sb, "- %s\n", d.Term)
		}
		return textResult(sb.String()), nil, nil
	}

	def, err := h.service.Indexer().GetDefinition(term)
	if err != nil {
		return lookupFailure(err, fmt.Sprintf("definition for %q", term)), nil, nil
	}

	ref := "Section " + def.Section
	if def.Marker != "" {
		ref += "(" + def.Marker + ")"
	}
	return textResult(fmt.Sprintf("**%s** (%s)\n\n%s", def.Term, ref, def.Text)), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *DefinitionHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_definition",
		Description: "Look up the statutory definition of a term. Leave the term empty to list all defined terms",
	}
}

// PenaltyArgument defines penalty lookup parameters.
type PenaltyArgument struct {
	Section string `json:"section,omitempty" jsonschema_description:"Penalty section number (e.g., 25). Leave empty to list all penalty sections"`
}

// PenaltyHandler handles the get_penalty MCP tool.
type PenaltyHandler struct {
	service *Service
}

// NewPenaltyHandler creates a new penalty handler.
func NewPenaltyHandler(service *Service) *PenaltyHandler {
	return &PenaltyHandler{service: service}
}

// Handle returns the fines and imprisonment terms of a penalty section.
func (h *PenaltyHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args PenaltyArgument) (*mcp.CallToolResult, any, error) {
	number := strings.TrimSpace(args.Section)
	if number == "" {
		doc, err := h.service.Document()
		if err != nil {
			return lookupFailure(err, "penalties"), nil, nil
		}
		penalties := doc.Penalties()
		if len(penalties) == 0 {
			return textResult("No penalty sections found."), nil, nil
		}
		var sb strings.Builder
		for _, p := range penalties {
			writePenalty(&sb, p)
			sb.WriteString("\n")
		}
		return textResult(sb.String()), nil, nil
	}

	p, err := h.service.Indexer().GetPenalty(number)
	if err != nil {
		return lookupFailure(err, fmt.Sprintf("penalty section %q", number)), nil, nil
	}

	var sb strings.Builder
	writePenalty(&sb, p)
	return textResult(sb.String()), nil, nil
}

// writePenalty renders one penalty section.
func writePenalty(sb *strings.Builder, p statute.PenaltySection) {
	fmt.Fprintf(sb, "### %s\n", formatSectionHeading(p.Section, p.Title))
	if len(p.Fines) == 0 && len(p.Imprisonment) == 0 {
		sb.WriteString("No numeric penalty found.\n")
		return
	}
	for _, r := range p.Imprisonment {
		fmt.Fprintf(sb, "- Imprisonment: %s to %s\n", r.Min, r.Max)
	}
	for _, f := range p.Fines {
		fmt.Fprintf(sb, "- Fine: PHP %s\n", statute.FormatAmount(f.Amount))
	}
}


// GetToolDefinition returns the MCP tool definition.
func (h *PenaltyHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_penalty",
		Description: "Get the fines and imprisonment terms prescribed by a penalty section",
	}
}

// ClausesArgument defines clause list parameters.
type ClausesArgument struct {
	List string `json:"list" jsonschema_description:"Which list to return: rights, principles or functions"`
}

// ClausesHandler handles the list_clauses MCP tool.
type ClausesHandler struct {
	service *Service
}

// NewClausesHandler creates a new clauses handler.
func NewClausesHandler(service *Service) *ClausesHandler {
	return &ClausesHandler{service: service}
}

// Handle returns an enumerated list of the statute.
func (h *ClausesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ClausesArgument) (*mcp.CallToolResult, any, error) {
	list := statute.ClauseList(strings.ToLower(strings.TrimSpace(args.List)))
	switch list {
	case statute.ClauseRights, statute.ClausePrinciples, statute.ClauseFunctions:
	default:
		return errorResult("Unknown list %q. Use rights, principles or functions", args.List), nil, nil
	}

	clauses, err := h.service.Indexer().Clauses(list)
	if err != nil {
		return lookupFailure(err, string(list)), nil, nil
	}
	if len(clauses) == 0 {
		return textResult(fmt.Sprintf("No %s found.", list)), nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %s (%s):\n\n", len(clauses), list, clauseSections(clauses))
	for _, c := range clauses {
		fmt.Fprintf(&sb, "(%s) %s\n", c.Marker, c.Summary)
	}
	return textResult(sb.String()), nil, nil
}

// clauseSections renders the distinct sections of a list in order: "Section 7" or "Sections 7, 8".
func clauseSections(clauses []statute.Clause) string {
	var numbers []string
	seen := make(map[string]bool)
	for _, c := range clauses {
		if !seen[c.Section] {
			seen[c.Section] = true
			numbers = append(numbers, c.Section)
		}
	}
	if len(numbers) == 1 {
		return "Section " + numbers[0]
	}
	return "Sections " + strings.Join(numbers, ", ")
}

// GetToolDefinition returns the MCP tool definition.
func (h *ClausesHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_clauses",
		Description: "List the enumerated rights of the data subject, data privacy principles or functions of the commission",
	}
}

// StatsHandler handles the statute_stats MCP tool.
type StatsHandler struct {
	service *Service
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(service *Service) *StatsHandler {
	return &StatsHandler{service: service}
}

// StatsArgument takes no parameters.
type StatsArgument struct{}

// Handle summarizes the loaded statute.
func (h *StatsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatsArgument) (*mcp.CallToolResult, any, error) {
	doc, err := h.service.Document()
	if err != nil {
		return lookupFailure(err, "statute"), nil, nil
	}

	st := doc.Stats()
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Statute**: %s\n", h.service.GetSettings().Name)
	fmt.Fprintf(&sb, "**Loaded**: %s (id %s)\n", st.LoadedAt.Format("2006-01-02 15:04:05"), doc.ID())
	fmt.Fprintf(&sb, "**Characters**: %d\n", st.Characters)
	fmt.Fprintf(&sb, "**Sections**: %d\n", st.Sections)
	fmt.Fprintf(&sb, "**Definitions**: %d\n", st.Definitions)
	fmt.Fprintf(&sb, "**Penalty sections**: %d\n", st.Penalties)
	fmt.Fprintf(&sb, "**Rights**: %d, **Principles**: %d, **Functions**: %d\n", st.Rights, st.Principles, st.Functions)
	fmt.Fprintf(&sb, "**Index terms**: %d\n", st.IndexTerms)
	if notes := doc.Notes(); len(notes) > 0 {
		sb.WriteString("\n**Parsing notes**:\n")
		for _, n := range notes {
			fmt.Fprintf(&sb, "- %s\n", n)
		}
	}
	return textResult(sb.String()), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *StatsHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "statute_stats",
		Description: "Summarize the loaded statute: section, definition and penalty counts and parsing notes",
	}
}
