package kb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-statute-server/internal/domain"
	"github.com/sha1n/mcp-statute-server/internal/statute"
)

// SearchArgument defines search parameters.
type SearchArgument struct {
	Query string `json:"query" jsonschema_description:"Keywords to look for (e.g., consent processing)"`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Maximum number of sections to return"`
}

// SearchHandler handles the search_statute MCP tool.
type SearchHandler struct {
	service *Service
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(service *Service) *SearchHandler {
	return &SearchHandler{
		service: service,
	}
}

// Handle ranks sections by keyword occurrences and returns formatted results.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgument) (*mcp.CallToolResult, any, error) {
	doc, err := h.service.Document()
	if err != nil {
		return lookupFailure(err, "statute"), nil, nil
	}

	// An empty query ranks nothing and falls through to the no-results answer.
	hits := doc.Search(args.Query)
	if len(hits) == 0 {
		return textResult(fmt.Sprintf("No sections found for query: %s", args.Query)), nil, nil
	}

	limit := h.limit(args.Limit)
	shown := hits
	if len(shown) > limit {
		shown = shown[:limit]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d sections for '%s':\n\n", len(hits), args.Query)
	for i, hit := range shown {
		s, err := doc.GetSection(hit.Section)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "%d. %s (score %d)\n", i+1, formatSectionHeading(s.Number, s.Title), hit.Score)
	}
	if len(hits) > len(shown) {
		fmt.Fprintf(&sb, "... and %d more sections\n", len(hits)-len(shown))
	}

	return textResult(sb.String()), nil, nil
}

func (h *SearchHandler) limit(requested int) int {
	maxResults := h.service.GetSettings().MaxResults
	if requested <= 0 || requested > maxResults {
		return maxResults
	}
	return requested
}

// GetToolDefinition returns the MCP tool definition.
func (h *SearchHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_statute",
		Description: "Find statute sections containing the given keywords, ranked by how often they occur",
	}
}

// FulltextArgument defines full-text search parameters.
type FulltextArgument struct {
	Query string `json:"query" jsonschema_description:"Search query (supports phrases and fuzzy matching of word forms)"`
	Kind  string `json:"kind,omitempty" jsonschema_description:"Filter by section role: definitions, penalty, rights, principles, functions or section"`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Maximum number of sections to return"`
}

// FulltextHandler handles the fulltext_statute MCP tool.
type FulltextHandler struct {
	service *Service
}

// NewFulltextHandler creates a new full-text search handler.
func NewFulltextHandler(service *Service) *FulltextHandler {
	return &FulltextHandler{service: service}
}

var validKinds = map[string]bool{
	domain.KindSection:     true,
	domain.KindDefinitions: true,
	domain.KindPenalty:     true,
	domain.KindRights:      true,
	domain.KindPrinciples:  true,
	domain.KindFunctions:   true,
}

// Handle executes the search and returns highlighted results.
func (h *FulltextHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FulltextArgument) (*mcp.CallToolResult, any, error) {
	if !h.service.IsReady() {
		return errorResult(notReadyMessage), nil, nil
	}

	if strings.TrimSpace(args.Query) == "" {
		return errorResult("Query cannot be empty"), nil, nil
	}

	kind := strings.ToLower(strings.TrimSpace(args.Kind))
	if kind != "" && !validKinds[kind] {
		return errorResult("Unknown kind %q", args.Kind), nil, nil
	}

	hits, err := h.service.Fulltext(FulltextQuery{Query: args.Query, Kind: kind, Limit: args.Limit})
	if err != nil {
		if errors.Is(err, statute.ErrNotLoaded) {
			return errorResult(notReadyMessage), nil, nil
		}
		return errorResult("Search failed: %s", err), nil, nil
	}

	return formatFulltext(hits, args.Query), nil, nil
}

// formatFulltext formats full-text hits for the MCP response.
func formatFulltext(hits []FulltextHit, queryStr string) *mcp.CallToolResult {
	if len(hits) == 0 {
		return textResult(fmt.Sprintf("No results found for query: %s", queryStr))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d results for '%s':\n\n", len(hits), queryStr)

	for i, hit := range hits {
		fmt.Fprintf(&sb, "### %d. %s\n", i+1, formatSectionHeading(hit.Section, hit.Title))
		fmt.Fprintf(&sb, "**Score**: %.4f\n\n", hit.Score)

		if len(hit.Fragments) > 0 {
			for _, fragment := range hit.Fragments {
				sb.WriteString("> ")
				sb.WriteString(strings.ReplaceAll(fragment, "\n", " "))
				sb.WriteString("\n")
			}
		}

		sb.WriteString("\n")
	}

	return textResult(sb.String())
}

// GetToolDefinition returns the MCP tool definition.
func (h *FulltextHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "fulltext_statute",
		Description: "Relevance-ranked full-text search over statute sections with highlighted excerpts",
	}
}

// RegisterTools registers every statute tool with an MCP server.
func RegisterTools(server *mcp.Server, service *Service) {
	section := NewSectionHandler(service)
	mcp.AddTool(server, section.GetToolDefinition(), section.Handle)

	definition := NewDefinitionHandler(service)
	mcp.AddTool(server, definition.GetToolDefinition(), definition.Handle)

	penalty := NewPenaltyHandler(service)
	mcp.AddTool(server, penalty.GetToolDefinition(), penalty.Handle)

	clauses := NewClausesHandler(service)
	mcp.AddTool(server, clauses.GetToolDefinition(), clauses.Handle)

	search := NewSearchHandler(service)
	mcp.AddTool(server, search.GetToolDefinition(), search.Handle)

	fulltext := NewFulltextHandler(service)
	mcp.AddTool(server, fulltext.GetToolDefinition(), fulltext.Handle)

	stats := NewStatsHandler(service)
	mcp.AddTool(server, stats.GetToolDefinition(), stats.Handle)
}
