package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-statute-server/internal/compliance"
	"github.com/sha1n/mcp-statute-server/internal/kb"
	"github.com/sha1n/mcp-statute-server/internal/pii"
)

// instructions is sent to clients on initialization
const instructions = "Answers questions about a loaded statute. Use get_section, get_definition and get_penalty " +
	"for exact lookups, search_statute or fulltext_statute to find relevant sections, and check_compliance " +
	"to screen a document for personal information and likely violations."

// ServerConfig contains configuration for creating an MCP server
type ServerConfig struct {
	Name    string
	Version string
	// Statute is optional. Without it the server registers no tools.
	Statute *kb.Service
	// Sections overrides the statute sections cited by compliance checks.
	Sections *compliance.Sections
}

// CreateServer creates and configures the MCP server
func CreateServer(cfg ServerConfig) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &mcp.ServerOptions{Instructions: instructions})

	if cfg.Statute == nil {
		return s
	}

	kb.RegisterTools(s, cfg.Statute)

	sections := compliance.DefaultSections()
	if cfg.Sections != nil {
		sections = *cfg.Sections
	}
	indexer := cfg.Statute.Indexer()
	checker := compliance.NewChecker(indexer, pii.NewDetector(), sections)
	compliance.RegisterTools(s, indexer, checker, sections)

	return s
}
